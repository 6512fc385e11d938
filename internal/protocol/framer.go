package protocol

import "strings"

// LineFramer accumulates decoded text and emits complete lines as they
// become available. Empty lines pass through; filtering them is the
// normalizer's job.
type LineFramer struct {
	rest string
}

// Push appends a fragment and returns every newly completed line, in
// order, with the terminator excluded.
func (f *LineFramer) Push(fragment string) []string {
	if fragment == "" {
		return nil
	}

	f.rest += fragment
	if !strings.Contains(f.rest, "\n") {
		return nil
	}

	parts := strings.Split(f.rest, "\n")
	f.rest = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Flush returns the trailing unterminated line at stream end, if any.
func (f *LineFramer) Flush() (string, bool) {
	if f.rest == "" {
		return "", false
	}
	line := f.rest
	f.rest = ""
	return line, true
}
