package gpsd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

const (
	// ProtoMajorMin is the minimum supported gpsd protocol major
	// version, checked against the VERSION announcement.
	ProtoMajorMin = 3

	// EnableWatchCmd is the command that switches the daemon into
	// JSON watcher mode. Sent exactly once, during the handshake.
	EnableWatchCmd = "?WATCH={\"enable\":true,\"json\":true};\r\n"
)

// Tracer observes raw protocol traffic and decode outcomes. All hooks
// are called synchronously from the reading goroutine and must not
// retain their byte slice arguments.
type Tracer interface {
	// RawLine is called with every line read, before decoding.
	RawLine(line []byte)
	// Decoded is called after a line decoded successfully.
	Decoded(r Report)
	// DecodeFailed is called when a line did not decode.
	DecodeFailed(line []byte, err error)
}

// Session drives the gpsd protocol over one duplex byte stream. It
// performs one blocking line read at a time and is not safe for
// concurrent use; run one Session per connection.
type Session struct {
	r *bufio.Reader
	w io.Writer

	trace   Tracer
	maxLine int
}

// Option configures a Session.
type Option func(*Session)

// WithTracer installs a hook observing every raw line and decode
// outcome.
func WithTracer(t Tracer) Option {
	return func(s *Session) { s.trace = t }
}

// WithMaxLineBytes rejects lines longer than n bytes with a
// DecodeError instead of handing them to the decoder. Zero means no
// limit.
func WithMaxLineBytes(n int) Option {
	return func(s *Session) { s.maxLine = n }
}

// NewSession wraps the reading and writing halves of a connection to
// gpsd. For a net.Conn, pass it as both. The Session owns the stream
// for its lifetime; closing the underlying connection is the caller's
// job.
func NewSession(r io.Reader, w io.Writer, opts ...Option) *Session {
	s := &Session{r: bufio.NewReader(r), w: w}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type flusher interface {
	Flush() error
}

// readLine reads up to and including the next newline, skipping blank
// keepalive lines. A read failure is terminal for the stream; EOF with
// a partial line still yields the partial line, matching daemon
// shutdown mid-message.
func (s *Session) readLine() ([]byte, error) {
	for {
		line, err := s.r.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, fmt.Errorf("gpsd: read: %w", err)
		}
		if s.trace != nil {
			s.trace.RawLine(line)
		}
		if s.maxLine > 0 && len(line) > s.maxLine {
			head := line
			if len(head) > 64 {
				head = head[:64]
			}
			derr := &DecodeError{Line: head, Err: fmt.Errorf("line too large (%d bytes)", len(line))}
			if s.trace != nil {
				s.trace.DecodeFailed(line, derr)
			}
			return nil, derr
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			if err != nil {
				return nil, fmt.Errorf("gpsd: read: %w", err)
			}
			continue
		}
		return trimmed, nil
	}
}
