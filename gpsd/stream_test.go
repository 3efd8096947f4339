package gpsd

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNextDecodesSequence(t *testing.T) {
	in := `{"class":"TPV","mode":3,"lat":66.123}` + "\r\n" +
		`{"class":"SKY","hdop":0.9}` + "\n" +
		`{"class":"PPS","device":"/dev/gps0","real_sec":1,"real_nsec":0,"clock_sec":1,"clock_nsec":5,"precision":-20}` + "\n"
	s := NewSession(strings.NewReader(in), io.Discard)

	r, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	tpv, ok := r.(TPV)
	if !ok || tpv.Mode != Fix3D || tpv.Lat == nil || *tpv.Lat != 66.123 {
		t.Fatalf("got %#v", r)
	}

	r, err = s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	sky, ok := r.(Sky)
	if !ok || sky.Hdop == nil || *sky.Hdop != 0.9 {
		t.Fatalf("got %#v", r)
	}

	r, err = s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	pps, ok := r.(PPS)
	if !ok || pps.Device != "/dev/gps0" || pps.Precision != -20 {
		t.Fatalf("got %#v", r)
	}

	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestNextDecodeErrorDoesNotBreakStream(t *testing.T) {
	in := `{"class":"TPV","mode":` + "\n" +
		`{"class":"TPV","mode":2,"lat":1.0}` + "\n"
	s := NewSession(strings.NewReader(in), io.Discard)

	_, err := s.Next()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}

	// The stream is still usable; skipping the bad line is the
	// caller's choice.
	r, err := s.Next()
	if err != nil {
		t.Fatalf("next after decode error: %v", err)
	}
	if tpv := r.(TPV); tpv.Mode != Fix2D {
		t.Fatalf("mode=%v", tpv.Mode)
	}
}

func TestNextIOErrorIsNotDecodeError(t *testing.T) {
	s := NewSession(strings.NewReader(""), io.Discard)
	_, err := s.Next()
	if err == nil {
		t.Fatalf("expected error on empty stream")
	}
	var de *DecodeError
	if errors.As(err, &de) {
		t.Fatalf("EOF classified as DecodeError: %v", err)
	}
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err=%v", err)
	}
}

func TestNextAnyUnknownClass(t *testing.T) {
	in := `{"class":"SUBFRAME","device":"/dev/gps0"}` + "\n" +
		`{"class":"WATCH","enable":true}` + "\n"
	s := NewSession(strings.NewReader(in), io.Discard)

	r, err := s.NextAny()
	if err != nil {
		t.Fatalf("nextany: %v", err)
	}
	u, ok := r.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", r)
	}
	if u.Class() != "SUBFRAME" {
		t.Fatalf("class=%q", u.Class())
	}

	// Handshake classes are part of the unified union.
	r, err = s.NextAny()
	if err != nil {
		t.Fatalf("nextany: %v", err)
	}
	if _, ok := r.(Watch); !ok {
		t.Fatalf("expected Watch, got %T", r)
	}
}

func TestNextMaxLineBytes(t *testing.T) {
	long := `{"class":"TPV","mode":3,"pad":"` + strings.Repeat("x", 512) + `"}`
	in := long + "\n" + `{"class":"TPV","mode":2}` + "\n"
	s := NewSession(strings.NewReader(in), io.Discard, WithMaxLineBytes(256))

	_, err := s.Next()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for oversized line, got %v", err)
	}

	r, err := s.Next()
	if err != nil {
		t.Fatalf("next after oversized line: %v", err)
	}
	if tpv := r.(TPV); tpv.Mode != Fix2D {
		t.Fatalf("mode=%v", tpv.Mode)
	}
}

func TestNextSkipsBlankKeepaliveLines(t *testing.T) {
	in := "\r\n" + "\n" + `{"class":"TPV","mode":2,"lat":1.0}` + "\n" + "   \n"
	s := NewSession(strings.NewReader(in), io.Discard)

	r, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if tpv := r.(TPV); tpv.Mode != Fix2D {
		t.Fatalf("mode=%v", tpv.Mode)
	}

	// Trailing whitespace-only lines end in EOF, not a DecodeError.
	_, err = s.Next()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestStreamTracerSeesOutcomes(t *testing.T) {
	in := `{"class":"TPV","mode":3}` + "\n" +
		`{"class":"NOPE"}` + "\n"
	tr := &recordingTracer{}
	s := NewSession(strings.NewReader(in), io.Discard, WithTracer(tr))

	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := s.Next(); err == nil {
		t.Fatalf("expected decode failure")
	}
	if tr.raw != 2 || len(tr.decoded) != 1 || tr.failed != 1 {
		t.Fatalf("raw=%d decoded=%v failed=%d", tr.raw, tr.decoded, tr.failed)
	}
}

func TestNextOverDuplexBuffer(t *testing.T) {
	// Handshake then stream over the same session, as a caller would.
	in := versionLine + "\n" +
		`{"class":"DEVICES","devices":[{"path":"/dev/gps0","activated":"2024-01-10T11:36:48.480Z"}]}` + "\n" +
		`{"class":"WATCH","enable":true,"json":true}` + "\n" +
		`{"class":"TPV","mode":3,"lat":44.9,"lon":11.3,"speed":12.5}` + "\n"
	var out bytes.Buffer
	s := NewSession(strings.NewReader(in), &out)
	if err := s.Handshake(); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	r, err := s.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	tpv := r.(TPV)
	if tpv.Speed == nil || *tpv.Speed != 12.5 {
		t.Fatalf("speed=%v", tpv.Speed)
	}
}
