package gpsd

import (
	"fmt"
	"io"
)

// Handshake performs the fixed four-step exchange that must precede
// streaming: receive VERSION, send the enable-watch command, receive
// DEVICES, receive the WATCH acknowledgment.
//
// It is fail-fast and non-resumable: any error aborts the sequence and
// no step is retried. Nothing is written before the daemon's version
// has been validated against ProtoMajorMin.
func (s *Session) Handshake() error {
	line, err := s.readLine()
	if err != nil {
		return err
	}
	msg, err := s.decodeHandshake(line)
	if err != nil {
		return err
	}
	v, ok := msg.(Version)
	if !ok {
		return &UnexpectedReplyError{Line: copyLine(line)}
	}
	if v.ProtoMajor < ProtoMajorMin {
		return &UnsupportedVersionError{Major: v.ProtoMajor, Minor: v.ProtoMinor}
	}

	// The daemon's subsequent replies are contingent on having
	// received the command, so it must be fully flushed before the
	// next read.
	if _, err := io.WriteString(s.w, EnableWatchCmd); err != nil {
		return fmt.Errorf("gpsd: write watch command: %w", err)
	}
	if f, ok := s.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("gpsd: flush watch command: %w", err)
		}
	}

	line, err = s.readLine()
	if err != nil {
		return err
	}
	msg, err = s.decodeHandshake(line)
	if err != nil {
		return err
	}
	if _, ok := msg.(Devices); !ok {
		return &UnexpectedReplyError{Line: copyLine(line)}
	}

	line, err = s.readLine()
	if err != nil {
		return err
	}
	msg, err = s.decodeHandshake(line)
	if err != nil {
		return err
	}
	w, ok := msg.(Watch)
	if !ok {
		return &UnexpectedReplyError{Line: copyLine(line)}
	}
	if !watchAccepted(w) {
		return &WatchNegotiationError{Line: copyLine(line)}
	}
	return nil
}

// watchAccepted applies the negotiation rule: the only rejected
// acknowledgment is enable=false, json=false, nmea=true, meaning the
// daemon fell back to pure legacy NMEA dumping. Missing fields count
// as false, so an all-absent acknowledgment is accepted.
func watchAccepted(w Watch) bool {
	enable := w.Enable != nil && *w.Enable
	jsonOn := w.JSON != nil && *w.JSON
	nmea := w.NMEA != nil && *w.NMEA
	return enable || jsonOn || !nmea
}

func (s *Session) decodeHandshake(line []byte) (HandshakeReport, error) {
	r, err := DecodeHandshake(line)
	if err != nil {
		if s.trace != nil {
			s.trace.DecodeFailed(line, err)
		}
		return nil, err
	}
	if s.trace != nil {
		s.trace.Decoded(r)
	}
	return r, nil
}
