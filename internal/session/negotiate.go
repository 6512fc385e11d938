package session

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrStreamUnavailable is the terminal error for a turn whose open
// attempts both failed without a usable diagnostic.
var ErrStreamUnavailable = errors.New("stream unavailable")

// StreamPayload is the request body a turn opens its stream with.
type StreamPayload struct {
	Message   string
	ServerIDs []string
	Tool      string
}

// Streamer opens the raw reply stream for one turn. Implementations live
// at the transport boundary.
type Streamer interface {
	OpenStream(ctx context.Context, payload StreamPayload) (io.ReadCloser, error)
}

// minimalPayload strips the metadata the first attempt carried. The
// retry sends the message alone.
func minimalPayload(p StreamPayload) StreamPayload {
	return StreamPayload{Message: p.Message}
}

// chooseOpenError picks the terminal error for a turn after both open
// attempts failed: whichever attempt carried the more specific
// diagnostic text wins, with the first attempt preferred on a tie. With
// no diagnostic at all, the generic ErrStreamUnavailable stands.
func chooseOpenError(rich, minimal error) error {
	richMsg := strings.TrimSpace(errText(rich))
	minMsg := strings.TrimSpace(errText(minimal))

	switch {
	case richMsg == "" && minMsg == "":
		return ErrStreamUnavailable
	case len(richMsg) >= len(minMsg):
		return rich
	default:
		return minimal
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
