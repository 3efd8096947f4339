package gpsd

import (
	"bytes"
	"encoding/json"
)

// Report is any decoded gpsd message. Class returns the wire
// discriminator, e.g. "TPV".
type Report interface {
	Class() string
}

// HandshakeReport is a message gpsd may send during the watch
// negotiation: Version, Devices or Watch.
type HandshakeReport interface {
	Report
	handshakeReport()
}

// DataReport is a message gpsd may send during steady-state streaming.
type DataReport interface {
	Report
	dataReport()
}

// Version is sent by gpsd to each client on connect.
type Version struct {
	// Public release level.
	Release string `json:"release"`
	// Internal revision-control level.
	Rev string `json:"rev"`
	// API major revision level.
	ProtoMajor int `json:"proto_major"`
	// API minor revision level.
	ProtoMinor int `json:"proto_minor"`
	// URL of the remote daemon reporting this version. Absent for a
	// local daemon.
	Remote *string `json:"remote,omitempty"`
}

func (Version) Class() string    { return "VERSION" }
func (Version) handshakeReport() {}

// Devices is the device enumeration reply.
type Devices struct {
	Devices []DeviceInfo `json:"devices"`
	// URL of the remote daemon reporting the device set.
	Remote *string `json:"remote,omitempty"`
}

func (Devices) Class() string    { return "DEVICES" }
func (Devices) handshakeReport() {}

// DeviceInfo is one entry of the Devices enumeration.
type DeviceInfo struct {
	// Device path. May be omitted when there is exactly one
	// subscribed channel.
	Path *string `json:"path,omitempty"`
	// Activation time as an ISO8601 timestamp; nil when the device is
	// inactive. See activatedTime for the wire quirks.
	Activated *string `json:"activated,omitempty"`
}

func (d *DeviceInfo) UnmarshalJSON(b []byte) error {
	type alias DeviceInfo
	aux := struct {
		Activated json.RawMessage `json:"activated"`
		*alias
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	act, err := activatedTime(aux.Activated)
	if err != nil {
		return err
	}
	d.Activated = act
	return nil
}

// Watch is the per-subscriber policy report, also used as the
// acknowledgment of a ?WATCH command.
type Watch struct {
	// Watcher mode on/off. Default is true.
	Enable *bool `json:"enable,omitempty"`
	// Dumping of JSON reports on/off. Default is false.
	JSON *bool `json:"json,omitempty"`
	// Dumping of binary packets as pseudo-NMEA on/off. Default is
	// false.
	NMEA *bool `json:"nmea,omitempty"`
	// Raw mode: 1 dumps the unprocessed data stream (binary packets
	// hex-dumped), 2 dumps received data verbatim.
	Raw *int `json:"raw,omitempty"`
	// Apply scaling divisors to output before dumping.
	Scaled *bool `json:"scaled,omitempty"`
	// Undocumented.
	Timing *bool `json:"timing,omitempty"`
	// Aggregate AIS type24 sentence parts.
	Split24 *bool `json:"split24,omitempty"`
	// Emit TOFF on each cycle and PPS on each 1PPS strobe.
	PPS *bool `json:"pps,omitempty"`
	// Watch only this device rather than all devices.
	Device *string `json:"device,omitempty"`
}

func (Watch) Class() string    { return "WATCH" }
func (Watch) handshakeReport() {}

// Device reports the configuration of a single device.
type Device struct {
	Path *string `json:"path,omitempty"`
	// Activation time as an ISO8601 timestamp; nil when inactive.
	Activated *string `json:"activated,omitempty"`
	// Bit vector of packet types seen so far (GPS, RTCM2, RTCM3, AIS).
	Flags *int `json:"flags,omitempty"`
	// gpsd's name for the device driver type.
	Driver  *string `json:"driver,omitempty"`
	Subtype *string `json:"subtype,omitempty"`
	// Line speed in bits per second.
	BPS *int `json:"bps,omitempty"`
	// N, O or E for no parity, odd, or even.
	Parity   *string `json:"parity,omitempty"`
	Stopbits *int    `json:"stopbits,omitempty"`
	// 0 is NMEA mode, 1 the device's alternate (usually binary) mode.
	Native *int `json:"native,omitempty"`
	// Device cycle time in seconds.
	Cycle *float64 `json:"cycle,omitempty"`
	// Minimum cycle time in seconds; reported only when the rate is
	// switchable.
	Mincycle *float64 `json:"mincycle,omitempty"`
}

func (Device) Class() string { return "DEVICE" }
func (Device) dataReport()   {}

func (d *Device) UnmarshalJSON(b []byte) error {
	type alias Device
	aux := struct {
		Activated json.RawMessage `json:"activated"`
		*alias
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	act, err := activatedTime(aux.Activated)
	if err != nil {
		return err
	}
	d.Activated = act
	return nil
}

// TPV is a time-position-velocity report. Every field other than Mode
// may be absent depending on fix quality and device capability.
type TPV struct {
	// Name of the originating device.
	Device *string `json:"device,omitempty"`
	Status *int    `json:"status,omitempty"`
	// Fix quality. Unrecognized wire values map to NoFix.
	Mode Mode `json:"mode"`
	// Time/date stamp in ISO8601 format, UTC.
	Time *string `json:"time,omitempty"`
	// Estimated timestamp error, seconds, 95% confidence.
	Ept         *float64 `json:"ept,omitempty"`
	Leapseconds *int     `json:"leapseconds,omitempty"`
	// Latitude/longitude in degrees; +/- is North/South, East/West.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
	// Altitude in meters (deprecated in favor of the explicit
	// references below).
	Alt *float64 `json:"alt,omitempty"`
	// Height above ellipsoid, meters.
	AltHAE *float64 `json:"altHAE,omitempty"`
	// MSL altitude, meters.
	AltMSL *float64 `json:"altMSL,omitempty"`
	// Geoid separation from WGS84, meters.
	GeoidSep *float64 `json:"geoidSep,omitempty"`
	// Error estimates, meters or degrees, 95% confidence.
	Epx *float64 `json:"epx,omitempty"`
	Epy *float64 `json:"epy,omitempty"`
	Epv *float64 `json:"epv,omitempty"`
	// Course over ground, degrees from true north.
	Track *float64 `json:"track,omitempty"`
	// Speed over ground, meters per second.
	Speed *float64 `json:"speed,omitempty"`
	// Climb (positive) or sink (negative) rate, meters per second.
	Climb *float64 `json:"climb,omitempty"`
	Epd   *float64 `json:"epd,omitempty"`
	Eps   *float64 `json:"eps,omitempty"`
	Epc   *float64 `json:"epc,omitempty"`
	// Horizontal 2D position error, meters.
	Eph *float64 `json:"eph,omitempty"`
}

func (TPV) Class() string { return "TPV" }
func (TPV) dataReport()   {}

// missingField reports a mandatory field absent from the wire object.
func missingField(line []byte, name string) error {
	return &DecodeError{Field: name, Line: copyLine(line), Err: errMissingField}
}

// Satellite is one row of a SKY view.
type Satellite struct {
	// PRN ID. Signed because numbering schemes vary: 1-63 GNSS, 64-96
	// GLONASS, 100-164 SBAS.
	PRN int16 `json:"PRN"`
	// Elevation in degrees.
	El *float64 `json:"el,omitempty"`
	// Azimuth, degrees from true north.
	Az *float64 `json:"az,omitempty"`
	// Signal strength in dB.
	SS *float64 `json:"ss,omitempty"`
	// Used in the current solution.
	Used   bool `json:"used"`
	GnssID *int `json:"gnssid,omitempty"`
	SvID   *int `json:"svid,omitempty"`
	Health *int `json:"health,omitempty"`
}

// UnmarshalJSON enforces that PRN and used are present; every other
// field is optional.
func (s *Satellite) UnmarshalJSON(b []byte) error {
	type alias Satellite
	aux := struct {
		PRN  *int16 `json:"PRN"`
		Used *bool  `json:"used"`
		*alias
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.PRN == nil {
		return missingField(b, "PRN")
	}
	if aux.Used == nil {
		return missingField(b, "used")
	}
	s.PRN = *aux.PRN
	s.Used = *aux.Used
	return nil
}

// Sky reports a sky view of satellite positions plus dilution of
// precision factors. DOPs may be missing when the covariance
// determinants are singular.
type Sky struct {
	Device *string `json:"device,omitempty"`
	// Longitudinal, latitudinal, altitude, time, horizontal,
	// hyperspherical and spherical dilution of precision. Multiply by
	// a base UERE for an error estimate.
	Xdop *float64 `json:"xdop,omitempty"`
	Ydop *float64 `json:"ydop,omitempty"`
	Vdop *float64 `json:"vdop,omitempty"`
	Tdop *float64 `json:"tdop,omitempty"`
	Hdop *float64 `json:"hdop,omitempty"`
	Gdop *float64 `json:"gdop,omitempty"`
	Pdop *float64 `json:"pdop,omitempty"`
	// Satellites in view, in reported order.
	Satellites []Satellite `json:"satellites,omitempty"`
}

func (Sky) Class() string { return "SKY" }
func (Sky) dataReport()   {}

// PPS is emitted when the daemon sees a valid pulse-per-second strobe.
// real_* is the time the GPS thinks it was at the PPS edge; clock_* is
// what the system clock thought at that moment.
type PPS struct {
	Device    string  `json:"device"`
	RealSec   float64 `json:"real_sec"`
	RealNsec  float64 `json:"real_nsec"`
	ClockSec  float64 `json:"clock_sec"`
	ClockNsec float64 `json:"clock_nsec"`
	// NTP-style estimate of PPS precision.
	Precision float64 `json:"precision"`
}

func (PPS) Class() string { return "PPS" }
func (PPS) dataReport()   {}

// UnmarshalJSON enforces the full timing tuple; a PPS report is useless
// with any member absent.
func (p *PPS) UnmarshalJSON(b []byte) error {
	var aux struct {
		Device    *string  `json:"device"`
		RealSec   *float64 `json:"real_sec"`
		RealNsec  *float64 `json:"real_nsec"`
		ClockSec  *float64 `json:"clock_sec"`
		ClockNsec *float64 `json:"clock_nsec"`
		Precision *float64 `json:"precision"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	switch {
	case aux.Device == nil:
		return missingField(b, "device")
	case aux.RealSec == nil:
		return missingField(b, "real_sec")
	case aux.RealNsec == nil:
		return missingField(b, "real_nsec")
	case aux.ClockSec == nil:
		return missingField(b, "clock_sec")
	case aux.ClockNsec == nil:
		return missingField(b, "clock_nsec")
	case aux.Precision == nil:
		return missingField(b, "precision")
	}
	p.Device = *aux.Device
	p.RealSec = *aux.RealSec
	p.RealNsec = *aux.RealNsec
	p.ClockSec = *aux.ClockSec
	p.ClockNsec = *aux.ClockNsec
	p.Precision = *aux.Precision
	return nil
}

// TOFF mirrors PPS but reports GPS time as derived from the serial data
// stream rather than the PPS pulse, and carries no precision estimate.
type TOFF struct {
	Device    string  `json:"device"`
	RealSec   float64 `json:"real_sec"`
	RealNsec  float64 `json:"real_nsec"`
	ClockSec  float64 `json:"clock_sec"`
	ClockNsec float64 `json:"clock_nsec"`
}

func (TOFF) Class() string { return "TOFF" }
func (TOFF) dataReport()   {}

func (t *TOFF) UnmarshalJSON(b []byte) error {
	var aux struct {
		Device    *string  `json:"device"`
		RealSec   *float64 `json:"real_sec"`
		RealNsec  *float64 `json:"real_nsec"`
		ClockSec  *float64 `json:"clock_sec"`
		ClockNsec *float64 `json:"clock_nsec"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	switch {
	case aux.Device == nil:
		return missingField(b, "device")
	case aux.RealSec == nil:
		return missingField(b, "real_sec")
	case aux.RealNsec == nil:
		return missingField(b, "real_nsec")
	case aux.ClockSec == nil:
		return missingField(b, "clock_sec")
	case aux.ClockNsec == nil:
		return missingField(b, "clock_nsec")
	}
	t.Device = *aux.Device
	t.RealSec = *aux.RealSec
	t.RealNsec = *aux.RealNsec
	t.ClockSec = *aux.ClockSec
	t.ClockNsec = *aux.ClockNsec
	return nil
}

// GST is a pseudorange noise report.
type GST struct {
	Device *string `json:"device,omitempty"`
	Time   *string `json:"time,omitempty"`
	// Standard deviation of the range inputs to the navigation
	// process.
	RMS *float64 `json:"rms,omitempty"`
	// Error ellipse: semi-major/semi-minor standard deviations in
	// meters, orientation in degrees from true north.
	Major  *float64 `json:"major,omitempty"`
	Minor  *float64 `json:"minor,omitempty"`
	Orient *float64 `json:"orient,omitempty"`
	// Standard deviations of latitude, longitude and altitude error,
	// meters.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
	Alt *float64 `json:"alt,omitempty"`
}

func (GST) Class() string { return "GST" }
func (GST) dataReport()   {}

// ATT is a vehicle-attitude report from devices with attitude sensors
// (dual-antenna GPS, compass, IMU). The *_st fields carry the sensor's
// own status indication for the adjacent reading.
type ATT struct {
	Device  *string  `json:"device,omitempty"`
	Time    *string  `json:"time,omitempty"`
	Heading *float64 `json:"heading,omitempty"`
	MagSt   *string  `json:"mag_st,omitempty"`
	Pitch   *float64 `json:"pitch,omitempty"`
	PitchSt *string  `json:"pitch_st,omitempty"`
	Yaw     *float64 `json:"yaw,omitempty"`
	YawSt   *string  `json:"yaw_st,omitempty"`
	Roll    *float64 `json:"roll,omitempty"`
	RollSt  *string  `json:"roll_st,omitempty"`
	Dip     *float64 `json:"dip,omitempty"`
	MagLen  *float64 `json:"mag_len,omitempty"`
	MagX    *float64 `json:"mag_x,omitempty"`
	MagY    *float64 `json:"mag_y,omitempty"`
	MagZ    *float64 `json:"mag_z,omitempty"`
	AccLen  *float64 `json:"acc_len,omitempty"`
	AccX    *float64 `json:"acc_x,omitempty"`
	AccY    *float64 `json:"acc_y,omitempty"`
	AccZ    *float64 `json:"acc_z,omitempty"`
	GyroX   *float64 `json:"gyro_x,omitempty"`
	GyroY   *float64 `json:"gyro_y,omitempty"`
	GyroZ   *float64 `json:"gyro_z,omitempty"`
	Depth   *float64 `json:"depth,omitempty"`
	// Temperature at the sensor, degrees Celsius.
	Temp *float64 `json:"temp,omitempty"`
}

func (ATT) Class() string { return "ATT" }
func (ATT) dataReport()   {}

// IMU carries raw inertial measurements; same shape as ATT minus the
// per-reading status strings.
type IMU struct {
	Device  *string  `json:"device,omitempty"`
	Time    *string  `json:"time,omitempty"`
	Heading *float64 `json:"heading,omitempty"`
	Pitch   *float64 `json:"pitch,omitempty"`
	Yaw     *float64 `json:"yaw,omitempty"`
	Roll    *float64 `json:"roll,omitempty"`
	MagX    *float64 `json:"mag_x,omitempty"`
	MagY    *float64 `json:"mag_y,omitempty"`
	MagZ    *float64 `json:"mag_z,omitempty"`
	AccX    *float64 `json:"acc_x,omitempty"`
	AccY    *float64 `json:"acc_y,omitempty"`
	AccZ    *float64 `json:"acc_z,omitempty"`
	GyroX   *float64 `json:"gyro_x,omitempty"`
	GyroY   *float64 `json:"gyro_y,omitempty"`
	GyroZ   *float64 `json:"gyro_z,omitempty"`
	Temp    *float64 `json:"temp,omitempty"`
}

func (IMU) Class() string { return "IMU" }
func (IMU) dataReport()   {}

// OSC reports the state of a GPS-disciplined oscillator.
type OSC struct {
	Device *string `json:"device,omitempty"`
	// Oscillator is currently running.
	Running *bool `json:"running,omitempty"`
	// The oscillator sees a reference (usually PPS).
	Reference *bool `json:"reference,omitempty"`
	// The oscillator output is disciplined to the reference.
	Disciplined *bool `json:"disciplined,omitempty"`
	// Delta between the PPS edge and the oscillator edge, nanoseconds.
	Delta *int `json:"delta,omitempty"`
}

func (OSC) Class() string { return "OSC" }
func (OSC) dataReport()   {}

// Poll is the reply to a ?POLL request: the most recent fix data for
// each active device.
type Poll struct {
	Time   *string `json:"time,omitempty"`
	Active *int    `json:"active,omitempty"`
	TPV    []TPV   `json:"tpv,omitempty"`
	Sky    []Sky   `json:"sky,omitempty"`
	GST    []GST   `json:"gst,omitempty"`
}

func (Poll) Class() string { return "POLL" }
func (Poll) dataReport()   {}

// Unknown holds a syntactically valid message whose class is not
// modeled here. It only appears when decoding against the unified
// union; the closed unions reject unrecognized classes instead.
type Unknown struct {
	// Discriminator as found on the wire; may be empty if the object
	// had no class field.
	ClassName string
	// The full object, verbatim.
	Raw json.RawMessage
}

func (u Unknown) Class() string { return u.ClassName }

// Marshal encodes a report back to its wire shape, class field
// included. Unknown reports are emitted verbatim.
func Marshal(r Report) ([]byte, error) {
	if u, ok := r.(Unknown); ok {
		return append(json.RawMessage(nil), u.Raw...), nil
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + len(r.Class()) + 16)
	buf.WriteString(`{"class":"`)
	buf.WriteString(r.Class())
	buf.WriteByte('"')
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}
