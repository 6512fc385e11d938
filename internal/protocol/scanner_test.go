package protocol

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// drizzleReader hands out at most n bytes per Read to exercise chunk
// boundaries in the pipeline.
type drizzleReader struct {
	r io.Reader
	n int
}

func (d *drizzleReader) Read(p []byte) (int, error) {
	if len(p) > d.n {
		p = p[:d.n]
	}
	return d.r.Read(p)
}

func collect(t *testing.T, sc *Scanner) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("unexpected scan error: %v", err)
		}
		events = append(events, ev)
	}
}

func TestScannerFullTurn(t *testing.T) {
	wire := "data: {\"delta\":\"Прив\"}\n\n" +
		"data: {\"delta\":\"ет\"}\n\n" +
		"data: {\"state\":{\"turns\":1}}\n\n" +
		"data: [DONE]\n\n"

	for _, chunk := range []int{1, 3, 4096} {
		sc := NewScanner(&drizzleReader{r: strings.NewReader(wire), n: chunk})
		events := collect(t, sc)

		if len(events) != 4 {
			t.Fatalf("chunk %d: expected 4 events, got %d: %+v", chunk, len(events), events)
		}
		if events[0].Delta != "Прив" || events[1].Delta != "ет" {
			t.Fatalf("chunk %d: unexpected deltas: %+v", chunk, events[:2])
		}
		if events[2].Kind != EventState {
			t.Fatalf("chunk %d: expected state event, got %+v", chunk, events[2])
		}
		if events[3].Kind != EventDone {
			t.Fatalf("chunk %d: expected done event, got %+v", chunk, events[3])
		}
	}
}

func TestScannerFlushesUnterminatedTail(t *testing.T) {
	sc := NewScanner(strings.NewReader("data: {\"delta\":\"a\"}\ntrailing text"))
	events := collect(t, sc)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	if events[1].Kind != EventText || events[1].Delta != "trailing text" {
		t.Fatalf("unexpected tail event: %+v", events[1])
	}
}

type failingReader struct {
	data string
	read bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		return copy(p, f.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestScannerSurfacesReadError(t *testing.T) {
	sc := NewScanner(&failingReader{data: "data: {\"delta\":\"a\"}\n"})

	ev, err := sc.Next()
	if err != nil || ev.Delta != "a" {
		t.Fatalf("expected first delta, got %+v %v", ev, err)
	}
	if _, err := sc.Next(); err == nil || err.Error() != "connection reset" {
		t.Fatalf("expected read error, got %v", err)
	}
}
