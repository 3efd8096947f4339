package gpsd

import (
	"encoding/json"
	"errors"
)

type classEnvelope struct {
	Class string `json:"class"`
}

func copyLine(line []byte) []byte {
	return append([]byte(nil), line...)
}

// splitClass parses the outer object just far enough to read the
// discriminator. Malformed JSON surfaces here, before any schema is
// selected.
func splitClass(line []byte) (string, error) {
	var env classEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return "", &DecodeError{Line: copyLine(line), Err: err}
	}
	return env.Class, nil
}

// unmarshalReport parses the full line against the selected schema,
// keeping field-level detail when a coercion rule already produced a
// DecodeError.
func unmarshalReport(line []byte, class string, v any) error {
	if err := json.Unmarshal(line, v); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			if de.Class == "" {
				de.Class = class
			}
			return de
		}
		return &DecodeError{Class: class, Line: copyLine(line), Err: err}
	}
	return nil
}

// DecodeHandshake decodes one line against the handshake union
// (VERSION, DEVICES, WATCH). Anything else is a DecodeError naming the
// raw discriminator.
func DecodeHandshake(line []byte) (HandshakeReport, error) {
	class, err := splitClass(line)
	if err != nil {
		return nil, err
	}
	switch class {
	case "VERSION":
		var v Version
		if err := unmarshalReport(line, class, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "DEVICES":
		var d Devices
		if err := unmarshalReport(line, class, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "WATCH":
		var w Watch
		if err := unmarshalReport(line, class, &w); err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, &DecodeError{Class: class, Line: copyLine(line), Err: errUnknownClass}
	}
}

// DecodeData decodes one line against the streaming union. Handshake
// classes and unrecognized classes are DecodeErrors.
func DecodeData(line []byte) (DataReport, error) {
	class, err := splitClass(line)
	if err != nil {
		return nil, err
	}
	r, err := decodeDataClass(line, class)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &DecodeError{Class: class, Line: copyLine(line), Err: errUnknownClass}
	}
	return r, nil
}

// decodeDataClass returns (nil, nil) when class is not part of the
// streaming union.
func decodeDataClass(line []byte, class string) (DataReport, error) {
	switch class {
	case "DEVICE":
		var d Device
		if err := unmarshalReport(line, class, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "TPV":
		var t TPV
		if err := unmarshalReport(line, class, &t); err != nil {
			return nil, err
		}
		return t, nil
	case "SKY":
		var s Sky
		if err := unmarshalReport(line, class, &s); err != nil {
			return nil, err
		}
		return s, nil
	case "PPS":
		var p PPS
		if err := unmarshalReport(line, class, &p); err != nil {
			return nil, err
		}
		return p, nil
	case "TOFF":
		var t TOFF
		if err := unmarshalReport(line, class, &t); err != nil {
			return nil, err
		}
		return t, nil
	case "GST":
		var g GST
		if err := unmarshalReport(line, class, &g); err != nil {
			return nil, err
		}
		return g, nil
	case "ATT":
		var a ATT
		if err := unmarshalReport(line, class, &a); err != nil {
			return nil, err
		}
		return a, nil
	case "IMU":
		var i IMU
		if err := unmarshalReport(line, class, &i); err != nil {
			return nil, err
		}
		return i, nil
	case "OSC":
		var o OSC
		if err := unmarshalReport(line, class, &o); err != nil {
			return nil, err
		}
		return o, nil
	case "POLL":
		var p Poll
		if err := unmarshalReport(line, class, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, nil
	}
}

// Decode decodes one line against the unified union: every handshake
// and streaming class, with unrecognized classes captured verbatim as
// Unknown rather than failing. This is the forward-compatibility
// escape hatch for protocol drift.
func Decode(line []byte) (Report, error) {
	class, err := splitClass(line)
	if err != nil {
		return nil, err
	}
	switch class {
	case "VERSION", "DEVICES", "WATCH":
		return DecodeHandshake(line)
	}
	r, err := decodeDataClass(line, class)
	if err != nil {
		return nil, err
	}
	if r != nil {
		return r, nil
	}
	return Unknown{ClassName: class, Raw: copyLine(line)}, nil
}
