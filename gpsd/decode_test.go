package gpsd

import (
	"errors"
	"testing"
)

func TestDecodeDataTPV(t *testing.T) {
	r, err := DecodeData([]byte(`{"class":"TPV","mode":3,"lat":66.123}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tpv, ok := r.(TPV)
	if !ok {
		t.Fatalf("expected TPV, got %T", r)
	}
	if tpv.Mode != Fix3D {
		t.Fatalf("mode=%v", tpv.Mode)
	}
	if tpv.Lat == nil || *tpv.Lat != 66.123 {
		t.Fatalf("lat=%v", tpv.Lat)
	}
	// Everything else absent.
	if tpv.Lon != nil || tpv.Time != nil || tpv.Alt != nil || tpv.Speed != nil || tpv.Device != nil {
		t.Fatalf("unexpected populated fields: %+v", tpv)
	}
}

func TestDecodeDataSKY(t *testing.T) {
	line := []byte(`{"class":"SKY","device":"aDevice","satellites":[{"PRN":123,"el":1.0,"az":2.0,"ss":3.0,"used":true,"gnssid":1,"svid":271,"health":1}]}`)
	r, err := DecodeData(line)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sky, ok := r.(Sky)
	if !ok {
		t.Fatalf("expected Sky, got %T", r)
	}
	if sky.Device == nil || *sky.Device != "aDevice" {
		t.Fatalf("device=%v", sky.Device)
	}
	if len(sky.Satellites) != 1 {
		t.Fatalf("satellites=%d", len(sky.Satellites))
	}
	sat := sky.Satellites[0]
	if sat.PRN != 123 {
		t.Fatalf("prn=%d", sat.PRN)
	}
	if !sat.Used {
		t.Fatalf("expected used")
	}
	if sat.El == nil || *sat.El != 1.0 {
		t.Fatalf("el=%v", sat.El)
	}
	if sat.Az == nil || *sat.Az != 2.0 {
		t.Fatalf("az=%v", sat.Az)
	}
	if sat.SS == nil || *sat.SS != 3.0 {
		t.Fatalf("ss=%v", sat.SS)
	}
	if sat.GnssID == nil || *sat.GnssID != 1 {
		t.Fatalf("gnssid=%v", sat.GnssID)
	}
	if sat.SvID == nil || *sat.SvID != 271 {
		t.Fatalf("svid=%v", sat.SvID)
	}
	if sat.Health == nil || *sat.Health != 1 {
		t.Fatalf("health=%v", sat.Health)
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := DecodeData([]byte(`{"class":broken`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Err == nil {
		t.Fatalf("expected an underlying parse diagnostic")
	}
}

func TestDecodeUnknownFieldsIgnored(t *testing.T) {
	r, err := DecodeData([]byte(`{"class":"TPV","mode":2,"lat":1.5,"futureField":{"a":1}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	tpv := r.(TPV)
	if tpv.Mode != Fix2D || tpv.Lat == nil || *tpv.Lat != 1.5 {
		t.Fatalf("tpv=%+v", tpv)
	}
}

func TestDecodeClosedUnionRejectsUnknownClass(t *testing.T) {
	_, err := DecodeData([]byte(`{"class":"SUBFRAME","device":"/dev/gps"}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Class != "SUBFRAME" {
		t.Fatalf("class=%q", de.Class)
	}
}

func TestDecodeDataRejectsHandshakeClass(t *testing.T) {
	_, err := DecodeData([]byte(`{"class":"VERSION","release":"3.25","rev":"r1","proto_major":3,"proto_minor":14}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestDecodeHandshakeRejectsDataClass(t *testing.T) {
	_, err := DecodeHandshake([]byte(`{"class":"TPV","mode":3}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Class != "TPV" {
		t.Fatalf("class=%q", de.Class)
	}
}

func TestDecodeUnifiedFallsBackToUnknown(t *testing.T) {
	line := `{"class":"SUBFRAME","device":"/dev/gps","TOW17":1234}`
	r, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	u, ok := r.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", r)
	}
	if u.Class() != "SUBFRAME" {
		t.Fatalf("class=%q", u.Class())
	}
	if string(u.Raw) != line {
		t.Fatalf("raw=%q", u.Raw)
	}
}

func TestDecodeUnifiedKnownClasses(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{`{"class":"VERSION","release":"3.25","rev":"r1","proto_major":3,"proto_minor":14}`, "VERSION"},
		{`{"class":"DEVICES","devices":[]}`, "DEVICES"},
		{`{"class":"WATCH","enable":true,"json":true}`, "WATCH"},
		{`{"class":"DEVICE","path":"/dev/gps0","activated":0}`, "DEVICE"},
		{`{"class":"TPV","mode":0}`, "TPV"},
		{`{"class":"SKY"}`, "SKY"},
		{`{"class":"PPS","device":"/dev/gps0","real_sec":1,"real_nsec":2,"clock_sec":3,"clock_nsec":4,"precision":-20}`, "PPS"},
		{`{"class":"TOFF","device":"/dev/gps0","real_sec":1,"real_nsec":2,"clock_sec":3,"clock_nsec":4}`, "TOFF"},
		{`{"class":"GST","rms":1.5}`, "GST"},
		{`{"class":"ATT","heading":180.0}`, "ATT"},
		{`{"class":"IMU","acc_x":0.02}`, "IMU"},
		{`{"class":"OSC","running":true,"delta":67}`, "OSC"},
		{`{"class":"POLL","active":1,"tpv":[{"class":"TPV","mode":3,"lat":1.0}],"sky":[{"class":"SKY"}]}`, "POLL"},
	}
	for _, tc := range cases {
		r, err := Decode([]byte(tc.line))
		if err != nil {
			t.Fatalf("decode %s: %v", tc.want, err)
		}
		if r.Class() != tc.want {
			t.Fatalf("class=%q want %q", r.Class(), tc.want)
		}
		if _, ok := r.(Unknown); ok {
			t.Fatalf("%s decoded as Unknown", tc.want)
		}
	}
}

func TestDecodePollOwnsNestedReports(t *testing.T) {
	line := `{"class":"POLL","time":"2024-01-10T11:36:48.480Z","active":1,` +
		`"tpv":[{"class":"TPV","mode":3,"lat":44.5,"lon":11.3}],` +
		`"sky":[{"class":"SKY","hdop":0.9,"satellites":[{"PRN":5,"used":true}]}]}`
	r, err := DecodeData([]byte(line))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	poll := r.(Poll)
	if len(poll.TPV) != 1 || poll.TPV[0].Mode != Fix3D {
		t.Fatalf("tpv=%+v", poll.TPV)
	}
	if len(poll.Sky) != 1 || len(poll.Sky[0].Satellites) != 1 {
		t.Fatalf("sky=%+v", poll.Sky)
	}
	if poll.Active == nil || *poll.Active != 1 {
		t.Fatalf("active=%v", poll.Active)
	}
}

func TestDecodeSatelliteRequiredFields(t *testing.T) {
	_, err := DecodeData([]byte(`{"class":"SKY","satellites":[{"PRN":5}]}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for satellite without used, got %v", err)
	}
	if de.Field != "used" {
		t.Fatalf("field=%q", de.Field)
	}
	if de.Class != "SKY" {
		t.Fatalf("class=%q", de.Class)
	}

	_, err = DecodeData([]byte(`{"class":"SKY","satellites":[{"used":true,"el":45.0}]}`))
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for satellite without PRN, got %v", err)
	}
	if de.Field != "PRN" {
		t.Fatalf("field=%q", de.Field)
	}
}

func TestDecodePPSRequiredFields(t *testing.T) {
	_, err := DecodeData([]byte(`{"class":"PPS"}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for empty PPS, got %v", err)
	}
	if de.Field != "device" {
		t.Fatalf("field=%q", de.Field)
	}
	if de.Class != "PPS" {
		t.Fatalf("class=%q", de.Class)
	}

	_, err = DecodeData([]byte(`{"class":"PPS","device":"/dev/gps0","real_sec":1,"real_nsec":2,"clock_sec":3,"clock_nsec":4}`))
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for PPS without precision, got %v", err)
	}
	if de.Field != "precision" {
		t.Fatalf("field=%q", de.Field)
	}
}

func TestDecodeTOFFRequiredFields(t *testing.T) {
	_, err := DecodeData([]byte(`{"class":"TOFF","device":"/dev/gps0","real_sec":1,"real_nsec":2,"clock_sec":3}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for TOFF without clock_nsec, got %v", err)
	}
	if de.Field != "clock_nsec" {
		t.Fatalf("field=%q", de.Field)
	}
	if de.Class != "TOFF" {
		t.Fatalf("class=%q", de.Class)
	}
}

func TestDecodeDeviceActivatedQuirks(t *testing.T) {
	r, err := DecodeData([]byte(`{"class":"DEVICE","path":"/dev/gps0","activated":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dev := r.(Device)
	if dev.Activated != nil {
		t.Fatalf("activated=%v, want nil for wire 0", *dev.Activated)
	}

	r, err = DecodeData([]byte(`{"class":"DEVICE","path":"/dev/gps0","activated":"2024-01-10T11:36:48.480Z","driver":"u-blox","bps":9600}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dev = r.(Device)
	if dev.Activated == nil || *dev.Activated != "2024-01-10T11:36:48.480Z" {
		t.Fatalf("activated=%v", dev.Activated)
	}
	if dev.Driver == nil || *dev.Driver != "u-blox" {
		t.Fatalf("driver=%v", dev.Driver)
	}

	_, err = DecodeData([]byte(`{"class":"DEVICE","path":"/dev/gps0","activated":1}`))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for activated=1, got %v", err)
	}
	if de.Field != "activated" {
		t.Fatalf("field=%q", de.Field)
	}
	if de.Class != "DEVICE" {
		t.Fatalf("class=%q", de.Class)
	}
}
