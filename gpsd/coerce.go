package gpsd

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errBadActivated = errors.New("expected ISO8601 string, 0 or null")

// activatedTime normalizes the "activated" device field. Daemon
// versions disagree on how "not activated" is encoded, so the accepted
// shapes are:
//
//	absent or null -> nil
//	ISO8601 string -> that string
//	the integer 0  -> nil
//
// Any other value (a non-zero number, a boolean, ...) is a decode
// error naming the field and the raw text.
func activatedTime(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &DecodeError{Field: "activated", Line: append([]byte(nil), raw...), Err: err}
		}
		return &s, nil
	}
	if string(raw) == "0" {
		return nil, nil
	}
	return nil, &DecodeError{Field: "activated", Line: append([]byte(nil), raw...), Err: errBadActivated}
}
