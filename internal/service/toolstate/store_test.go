package toolstate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMissingFileReadsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))

	if got := s.Load(); len(got) != 0 {
		t.Fatalf("expected empty state, got %v", got)
	}
	if !s.Enabled("anything") {
		t.Fatal("untoggled servers must default to enabled")
	}
}

func TestSetPersistsAcrossStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewStore(path)
	if err := s.Set("docs", false); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if err := s.Set("search", true); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	reopened := NewStore(path)
	if reopened.Enabled("docs") {
		t.Fatal("expected docs disabled")
	}
	if !reopened.Enabled("search") {
		t.Fatal("expected search enabled")
	}
}

func TestCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if got := s.Load(); len(got) != 0 {
		t.Fatalf("expected empty state for corrupt file, got %v", got)
	}
	// A toggle recovers the file.
	if err := s.Set("docs", false); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if s.Enabled("docs") {
		t.Fatal("expected docs disabled after recovery")
	}
}
