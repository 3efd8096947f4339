package feed

import (
	"math"
	"time"

	"gpsdclient/gpsd"
)

// Snapshot is the most recent aggregate view of the gpsd stream.
// Pointer fields are absent until a report has carried them.
type Snapshot struct {
	Connected bool   `json:"connected"`
	Valid     bool   `json:"valid"`
	Addr      string `json:"addr"`
	State     string `json:"state"`

	Device  string `json:"device,omitempty"`
	Mode    string `json:"mode,omitempty"`
	TimeUTC string `json:"time_utc,omitempty"`

	LatDeg   *float64 `json:"lat_deg,omitempty"`
	LonDeg   *float64 `json:"lon_deg,omitempty"`
	AltM     *float64 `json:"alt_m,omitempty"`
	SpeedMPS *float64 `json:"speed_mps,omitempty"`
	TrackDeg *float64 `json:"track_deg,omitempty"`
	ClimbMPS *float64 `json:"climb_mps,omitempty"`

	EphM *float64 `json:"eph_m,omitempty"`
	EpvM *float64 `json:"epv_m,omitempty"`
	HDOP *float64 `json:"hdop,omitempty"`
	PDOP *float64 `json:"pdop,omitempty"`

	SatellitesSeen *int `json:"satellites_seen,omitempty"`
	SatellitesUsed *int `json:"satellites_used,omitempty"`

	Reports    uint64 `json:"reports"`
	LastFixUTC string `json:"last_fix_utc,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// fixState accumulates report fields across the stream; reports are
// sparse, so each keeps its last-seen value until replaced.
type fixState struct {
	addr string

	device string

	mode   gpsd.Mode
	modeOK bool

	latDeg, lonDeg float64
	latOK, lonOK   bool

	altM  float64
	altOK bool

	speedMPS float64
	speedOK  bool

	trackDeg float64
	trackOK  bool

	climbMPS float64
	climbOK  bool

	ephM  float64
	ephOK bool
	epvM  float64
	epvOK bool

	hdop   float64
	hdopOK bool
	pdop   float64
	pdopOK bool

	satsSeen int
	satsUsed int
	satsOK   bool

	fixTime string
	lastFix time.Time
	valid   bool

	reports uint64
}

func newFixState(addr string) *fixState {
	return &fixState{addr: addr}
}

// apply folds one decoded report into the state. It returns true when
// the snapshot changed.
func (st *fixState) apply(nowUTC time.Time, r gpsd.DataReport) bool {
	st.reports++
	switch m := r.(type) {
	case gpsd.TPV:
		return st.applyTPV(nowUTC, m)
	case gpsd.Sky:
		return st.applySky(m)
	case gpsd.Device:
		if m.Path != nil {
			st.device = *m.Path
			return true
		}
		return false
	default:
		// PPS/TOFF/GST/ATT/IMU/OSC/POLL don't feed the fix summary.
		return false
	}
}

func (st *fixState) applyTPV(nowUTC time.Time, tpv gpsd.TPV) bool {
	st.mode = tpv.Mode
	st.modeOK = true

	if tpv.Device != nil {
		st.device = *tpv.Device
	}
	if tpv.Lat != nil {
		st.latDeg = *tpv.Lat
		st.latOK = true
	}
	if tpv.Lon != nil {
		st.lonDeg = *tpv.Lon
		st.lonOK = true
	}

	// Prefer the explicit MSL reference, then HAE, then legacy alt.
	switch {
	case tpv.AltMSL != nil:
		st.altM = *tpv.AltMSL
		st.altOK = true
	case tpv.AltHAE != nil:
		st.altM = *tpv.AltHAE
		st.altOK = true
	case tpv.Alt != nil:
		st.altM = *tpv.Alt
		st.altOK = true
	}

	if tpv.Speed != nil {
		st.speedMPS = *tpv.Speed
		st.speedOK = true
	}
	if tpv.Track != nil {
		st.trackDeg = *tpv.Track
		st.trackOK = true
	}
	if tpv.Climb != nil {
		st.climbMPS = *tpv.Climb
		st.climbOK = true
	}

	if tpv.Eph != nil {
		st.ephM = *tpv.Eph
		st.ephOK = true
	} else if tpv.Epx != nil && tpv.Epy != nil {
		st.ephM = math.Sqrt((*tpv.Epx)*(*tpv.Epx) + (*tpv.Epy)*(*tpv.Epy))
		st.ephOK = true
	}
	if tpv.Epv != nil {
		st.epvM = *tpv.Epv
		st.epvOK = true
	}

	if tpv.Time != nil {
		st.fixTime = *tpv.Time
	}

	if tpv.Mode >= gpsd.Fix2D && st.latOK && st.lonOK {
		st.valid = true
		if tpv.Time != nil {
			if ts, err := time.Parse(time.RFC3339Nano, *tpv.Time); err == nil {
				st.lastFix = ts.UTC()
			} else {
				st.lastFix = nowUTC
			}
		} else {
			st.lastFix = nowUTC
		}
	}
	return true
}

func (st *fixState) applySky(sky gpsd.Sky) bool {
	updated := false
	if sky.Device != nil {
		st.device = *sky.Device
		updated = true
	}
	if sky.Hdop != nil {
		st.hdop = *sky.Hdop
		st.hdopOK = true
		updated = true
	}
	if sky.Pdop != nil {
		st.pdop = *sky.Pdop
		st.pdopOK = true
		updated = true
	}
	if sky.Satellites != nil {
		used := 0
		for _, sat := range sky.Satellites {
			if sat.Used {
				used++
			}
		}
		st.satsSeen = len(sky.Satellites)
		st.satsUsed = used
		st.satsOK = true
		updated = true
	}
	return updated
}

func (st *fixState) snapshot(connected bool, state, lastErr string) Snapshot {
	out := Snapshot{
		Connected: connected,
		Valid:     st.valid,
		Addr:      st.addr,
		State:     state,
		Device:    st.device,
		TimeUTC:   st.fixTime,
		Reports:   st.reports,
		LastError: lastErr,
	}
	if st.modeOK {
		out.Mode = st.mode.String()
	}
	if st.latOK {
		v := st.latDeg
		out.LatDeg = &v
	}
	if st.lonOK {
		v := st.lonDeg
		out.LonDeg = &v
	}
	if st.altOK {
		v := st.altM
		out.AltM = &v
	}
	if st.speedOK {
		v := st.speedMPS
		out.SpeedMPS = &v
	}
	if st.trackOK {
		v := st.trackDeg
		out.TrackDeg = &v
	}
	if st.climbOK {
		v := st.climbMPS
		out.ClimbMPS = &v
	}
	if st.ephOK {
		v := st.ephM
		out.EphM = &v
	}
	if st.epvOK {
		v := st.epvM
		out.EpvM = &v
	}
	if st.hdopOK {
		v := st.hdop
		out.HDOP = &v
	}
	if st.pdopOK {
		v := st.pdop
		out.PDOP = &v
	}
	if st.satsOK {
		seen := st.satsSeen
		used := st.satsUsed
		out.SatellitesSeen = &seen
		out.SatellitesUsed = &used
	}
	if !st.lastFix.IsZero() {
		out.LastFixUTC = st.lastFix.UTC().Format(time.RFC3339Nano)
	}
	return out
}
