package protocol

import "io"

// Scanner drives the decode, frame and normalize stages over a raw byte
// stream and yields events in wire order. It is the read side of one
// conversation turn, typically wrapped around an HTTP response body.
type Scanner struct {
	r      io.Reader
	dec    ChunkDecoder
	framer LineFramer
	queue  []Event
	buf    []byte
	done   bool
}

// NewScanner wraps a byte stream.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r, buf: make([]byte, 4096)}
}

// Next returns the next event. It returns io.EOF once the stream is
// exhausted; any other error is a transport failure and is terminal for
// the turn.
func (s *Scanner) Next() (Event, error) {
	for {
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			return ev, nil
		}
		if s.done {
			return Event{}, io.EOF
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.ingest(s.dec.Decode(s.buf[:n]))
		}
		if err == io.EOF {
			s.finish()
			continue
		}
		if err != nil {
			return Event{}, err
		}
	}
}

func (s *Scanner) ingest(fragment string) {
	for _, line := range s.framer.Push(fragment) {
		if ev, ok := Normalize(line); ok {
			s.queue = append(s.queue, ev)
		}
	}
}

// finish flushes the decoder's partial rune and the framer's trailing
// unterminated line.
func (s *Scanner) finish() {
	s.done = true
	s.ingest(s.dec.Flush())
	if line, ok := s.framer.Flush(); ok {
		if ev, ok := Normalize(line); ok {
			s.queue = append(s.queue, ev)
		}
	}
}
