package gpsd

import (
	"reflect"
	"testing"
)

func f64(v float64) *float64 { return &v }
func boolPtr(v bool) *bool   { return &v }
func intPtr(v int) *int      { return &v }

func TestMarshalRoundTrip(t *testing.T) {
	reports := []Report{
		Version{Release: "3.25", Rev: "3.25.1", ProtoMajor: 3, ProtoMinor: 14, Remote: strPtr("tcp://remote:2947")},
		Devices{Devices: []DeviceInfo{{Path: strPtr("/dev/gps0"), Activated: strPtr("2024-01-10T11:36:48.480Z")}, {Path: strPtr("/dev/gps1")}}},
		Watch{Enable: boolPtr(true), JSON: boolPtr(true), NMEA: boolPtr(false), Raw: intPtr(1), Scaled: boolPtr(true), PPS: boolPtr(true)},
		Device{Path: strPtr("/dev/gps0"), Driver: strPtr("u-blox"), BPS: intPtr(9600), Parity: strPtr("N"), Stopbits: intPtr(1), Cycle: f64(1.0)},
		TPV{Device: strPtr("/dev/gps0"), Mode: Fix3D, Time: strPtr("2024-01-10T11:36:48.480Z"), Lat: f64(44.9), Lon: f64(11.3), AltMSL: f64(41.2), Speed: f64(12.5), Track: f64(180.0), Eph: f64(4.2)},
		Sky{Device: strPtr("/dev/gps0"), Hdop: f64(0.9), Pdop: f64(1.4), Satellites: []Satellite{{PRN: 5, El: f64(45), Az: f64(120), SS: f64(33), Used: true, GnssID: intPtr(0), SvID: intPtr(5)}}},
		PPS{Device: "/dev/gps0", RealSec: 1704886608, RealNsec: 0, ClockSec: 1704886608, ClockNsec: 512, Precision: -20},
		TOFF{Device: "/dev/gps0", RealSec: 1704886608, RealNsec: 0, ClockSec: 1704886608, ClockNsec: 512},
		GST{Device: strPtr("/dev/gps0"), RMS: f64(1.5), Major: f64(2.0), Minor: f64(1.1), Lat: f64(0.8), Lon: f64(0.7), Alt: f64(1.9)},
		ATT{Device: strPtr("/dev/imu0"), Heading: f64(181.2), Pitch: f64(-1.5), Roll: f64(0.3), Temp: f64(22.5)},
		IMU{Device: strPtr("/dev/imu0"), AccX: f64(0.02), AccY: f64(-0.01), GyroZ: f64(0.004)},
		OSC{Device: strPtr("/dev/gps0"), Running: boolPtr(true), Reference: boolPtr(true), Disciplined: boolPtr(false), Delta: intPtr(67)},
		Poll{Time: strPtr("2024-01-10T11:36:48.480Z"), Active: intPtr(1), TPV: []TPV{{Mode: Fix2D, Lat: f64(1.0)}}},
	}
	for _, want := range reports {
		b, err := Marshal(want)
		if err != nil {
			t.Fatalf("marshal %s: %v", want.Class(), err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("decode %s (%s): %v", want.Class(), b, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s round trip:\n got %#v\nwant %#v", want.Class(), got, want)
		}
	}
}

func TestMarshalNoFixModeRoundTrips(t *testing.T) {
	// NoFix serializes as 1, which maps back to NoFix.
	b, err := Marshal(TPV{Mode: NoFix})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	if got.(TPV).Mode != NoFix {
		t.Fatalf("mode=%v", got.(TPV).Mode)
	}
}

func TestMarshalUnknownEmitsRaw(t *testing.T) {
	raw := `{"class":"SUBFRAME","TOW17":1234}`
	u := Unknown{ClassName: "SUBFRAME", Raw: []byte(raw)}
	b, err := Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != raw {
		t.Fatalf("got %s", b)
	}
}
