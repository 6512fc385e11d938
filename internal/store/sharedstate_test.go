package store

import (
	"reflect"
	"testing"
)

func TestSharedStateShallowMerge(t *testing.T) {
	s := NewSharedStateStore()

	s.MergeShallow(map[string]any{"x": 1})
	s.MergeShallow(map[string]any{"y": 2})

	want := map[string]any{"x": 1, "y": 2}
	if got := s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected state: %v", got)
	}
	if s.UpdatedAt().IsZero() {
		t.Fatal("expected updatedAt to be set")
	}
}

func TestSharedStateMergeOverwritesTopLevelOnly(t *testing.T) {
	s := NewSharedStateStore()

	s.MergeShallow(map[string]any{"a": map[string]any{"deep": true}, "b": 1})
	s.MergeShallow(map[string]any{"a": "flat"})

	want := map[string]any{"a": "flat", "b": 1}
	if got := s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected state: %v", got)
	}
}

func TestSharedStateReplaceAndReset(t *testing.T) {
	s := NewSharedStateStore()
	s.MergeShallow(map[string]any{"x": 1})

	s.Replace(map[string]any{"only": "this"})
	if got := s.Snapshot(); !reflect.DeepEqual(got, map[string]any{"only": "this"}) {
		t.Fatalf("unexpected state after replace: %v", got)
	}

	s.Reset()
	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty state after reset: %v", got)
	}
	if !s.UpdatedAt().IsZero() {
		t.Fatal("expected zero updatedAt after reset")
	}
}

func TestSharedStateSnapshotIsCopy(t *testing.T) {
	s := NewSharedStateStore()
	s.MergeShallow(map[string]any{"x": 1})

	snap := s.Snapshot()
	snap["x"] = 99

	if got := s.Snapshot()["x"]; got != 1 {
		t.Fatalf("snapshot mutation leaked into store: %v", got)
	}
}
