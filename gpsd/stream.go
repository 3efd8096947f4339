package gpsd

// Next reads one line and decodes it against the streaming union. Call
// it only after Handshake has completed.
//
// Each call is independent: a *DecodeError reports one bad line and
// leaves the stream usable, so the caller may skip and continue or
// abort as a matter of policy. Any other error is an I/O failure and
// the connection must be considered broken.
func (s *Session) Next() (DataReport, error) {
	line, err := s.readLine()
	if err != nil {
		return nil, err
	}
	r, err := DecodeData(line)
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

// NextAny is like Next but decodes against the unified union, so
// handshake-class messages still decode and unrecognized classes come
// back as Unknown instead of failing. For callers that do not separate
// phases.
func (s *Session) NextAny() (Report, error) {
	line, err := s.readLine()
	if err != nil {
		return nil, err
	}
	r, err := Decode(line)
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
