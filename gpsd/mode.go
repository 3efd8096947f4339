package gpsd

import "encoding/json"

// Mode is the fix quality reported in TPV.
type Mode int

const (
	// NoFix means no fix at all.
	NoFix Mode = iota
	// Fix2D is a two dimensional fix.
	Fix2D
	// Fix3D is a three dimensional fix (i.e. with altitude).
	Fix3D
)

func (m Mode) String() string {
	switch m {
	case Fix2D:
		return "2d"
	case Fix3D:
		return "3d"
	default:
		return "NoFix"
	}
}

// modeFromInt maps the wire encoding to a Mode. The mapping is total:
// anything other than 2 or 3 (including 0, 1 and out-of-range values)
// is NoFix, so an odd mode value never blocks decoding of an otherwise
// valid TPV.
func modeFromInt(v int) Mode {
	switch v {
	case 2:
		return Fix2D
	case 3:
		return Fix3D
	default:
		return NoFix
	}
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return &DecodeError{Field: "mode", Line: append([]byte(nil), b...), Err: err}
	}
	*m = modeFromInt(v)
	return nil
}

func (m Mode) MarshalJSON() ([]byte, error) {
	switch m {
	case Fix2D:
		return []byte("2"), nil
	case Fix3D:
		return []byte("3"), nil
	default:
		return []byte("1"), nil
	}
}
