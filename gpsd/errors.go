package gpsd

import (
	"errors"
	"fmt"
)

var (
	errUnknownClass = errors.New("unrecognized message class")
	errMissingField = errors.New("missing required field")
)

// DecodeError reports a line that was not valid JSON, did not match
// any schema in the active union, or carried a field whose encoding
// was rejected. The underlying stream stays usable after one.
type DecodeError struct {
	// Discriminator of the message being decoded, when known.
	Class string
	// Offending field, when the failure is field-scoped.
	Field string
	// Raw offending text.
	Line []byte
	// Underlying parse diagnostic.
	Err error
}

func (e *DecodeError) Error() string {
	msg := "gpsd: decode"
	if e.Class != "" {
		msg += " " + e.Class
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Line) > 0 {
		msg += fmt.Sprintf(" (line %q)", e.Line)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedVersionError means the daemon's protocol major version is
// below ProtoMajorMin. It is detected before any write occurs.
type UnsupportedVersionError struct {
	Major int
	Minor int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("gpsd: unsupported protocol version %d.%d (minimum major %d)", e.Major, e.Minor, ProtoMajorMin)
}

// UnexpectedReplyError means a handshake step received a valid message
// of the wrong variant for that step.
type UnexpectedReplyError struct {
	// The raw line, for diagnostics.
	Line []byte
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("gpsd: unexpected reply %q", e.Line)
}

// WatchNegotiationError means the watch acknowledgment reported a mode
// this client cannot use (pure legacy NMEA dumping).
type WatchNegotiationError struct {
	Line []byte
}

func (e *WatchNegotiationError) Error() string {
	return fmt.Sprintf("gpsd: watch negotiation failed %q", e.Line)
}
