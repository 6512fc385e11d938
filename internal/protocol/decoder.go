package protocol

import (
	"strings"
	"unicode/utf8"
)

// ChunkDecoder incrementally decodes a raw byte stream into UTF-8 text.
// A multi-byte rune split across two chunks is held back until its
// continuation bytes arrive; invalid sequences decode to U+FFFD instead
// of failing the stream.
type ChunkDecoder struct {
	pending []byte
}

// Decode consumes one chunk and returns the text that is complete so far.
func (d *ChunkDecoder) Decode(chunk []byte) string {
	if len(chunk) == 0 && len(d.pending) == 0 {
		return ""
	}

	d.pending = append(d.pending, chunk...)
	keep := trailingIncomplete(d.pending)
	ready := d.pending[:len(d.pending)-keep]
	if len(ready) == 0 {
		return ""
	}

	out := decodeReplacing(ready)
	tail := d.pending[len(d.pending)-keep:]
	d.pending = append([]byte(nil), tail...)
	return out
}

// Flush decodes whatever is still buffered when the stream ends. A rune
// left truncated by an abrupt close decodes to replacement characters.
func (d *ChunkDecoder) Flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	out := decodeReplacing(d.pending)
	d.pending = nil
	return out
}

// trailingIncomplete reports how many bytes at the end of p form the
// start of a rune whose continuation bytes have not arrived yet.
func trailingIncomplete(p []byte) int {
	n := len(p)
	for i := 1; i <= utf8.UTFMax && i <= n; i++ {
		b := p[n-i]
		if b < utf8.RuneSelf {
			return 0
		}
		if b >= 0xC0 {
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		// Continuation byte, keep scanning backwards for its lead.
	}
	return 0
}

func runeLen(lead byte) int {
	switch {
	case lead >= 0xF0:
		return 4
	case lead >= 0xE0:
		return 3
	case lead >= 0xC0:
		return 2
	default:
		return 1
	}
}

func decodeReplacing(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}

	var b strings.Builder
	b.Grow(len(p))
	for len(p) > 0 {
		r, size := utf8.DecodeRune(p)
		b.WriteRune(r)
		p = p[size:]
	}
	return b.String()
}
