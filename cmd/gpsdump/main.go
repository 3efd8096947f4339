// gpsdump connects to a gpsd daemon, performs the watch handshake and
// prints every decoded report until the connection drops.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"net"
	"os"
	"time"

	"gpsdclient/gpsd"
)

func main() {
	var (
		addr    string
		timeout time.Duration
		unified bool
		verbose bool
	)
	flag.StringVar(&addr, "addr", "127.0.0.1:2947", "gpsd host:port")
	flag.DurationVar(&timeout, "timeout", 2*time.Second, "dial timeout")
	flag.BoolVar(&unified, "unified", false, "decode with the unified union (unknown classes pass through)")
	flag.BoolVar(&verbose, "v", false, "log raw protocol lines")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		log.Error("dial failed", "addr", addr, "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	opts := []gpsd.Option{gpsd.WithMaxLineBytes(256 * 1024)}
	if verbose {
		opts = append(opts, gpsd.WithTracer(&logTracer{log: log}))
	}
	sess := gpsd.NewSession(conn, conn, opts...)

	if err := sess.Handshake(); err != nil {
		log.Error("handshake failed", "addr", addr, "err", err)
		os.Exit(1)
	}
	log.Info("watching", "addr", addr)

	for {
		var (
			r   gpsd.Report
			err error
		)
		if unified {
			r, err = sess.NextAny()
		} else {
			r, err = sess.Next()
		}
		if err != nil {
			var de *gpsd.DecodeError
			if errors.As(err, &de) {
				log.Warn("skipping undecodable line", "err", de)
				continue
			}
			log.Error("stream ended", "err", err)
			os.Exit(1)
		}
		printReport(log, r)
	}
}

func printReport(log *slog.Logger, r gpsd.Report) {
	switch m := r.(type) {
	case gpsd.TPV:
		attrs := []any{"mode", m.Mode.String()}
		if m.Time != nil {
			attrs = append(attrs, "time", *m.Time)
		}
		if m.Lat != nil && m.Lon != nil {
			attrs = append(attrs, "lat", *m.Lat, "lon", *m.Lon)
		}
		if m.AltMSL != nil {
			attrs = append(attrs, "alt_msl", *m.AltMSL)
		}
		if m.Speed != nil {
			attrs = append(attrs, "speed", *m.Speed)
		}
		if m.Track != nil {
			attrs = append(attrs, "track", *m.Track)
		}
		log.Info("tpv", attrs...)
	case gpsd.Sky:
		used := 0
		for _, sat := range m.Satellites {
			if sat.Used {
				used++
			}
		}
		attrs := []any{"sats", len(m.Satellites), "used", used}
		if m.Hdop != nil {
			attrs = append(attrs, "hdop", *m.Hdop)
		}
		log.Info("sky", attrs...)
	case gpsd.PPS:
		log.Info("pps", "device", m.Device, "real_sec", m.RealSec, "clock_sec", m.ClockSec, "precision", m.Precision)
	case gpsd.Device:
		attrs := []any{}
		if m.Path != nil {
			attrs = append(attrs, "path", *m.Path)
		}
		if m.Driver != nil {
			attrs = append(attrs, "driver", *m.Driver)
		}
		log.Info("device", attrs...)
	case gpsd.Unknown:
		log.Info("unknown report", "class", m.ClassName)
	default:
		log.Info("report", "class", r.Class())
	}
}

type logTracer struct {
	log *slog.Logger
}

func (t *logTracer) RawLine(line []byte) {
	t.log.Debug("raw", "line", string(line))
}

func (t *logTracer) Decoded(r gpsd.Report) {
	t.log.Debug("decoded", "class", r.Class())
}

func (t *logTracer) DecodeFailed(line []byte, err error) {
	t.log.Debug("decode failed", "err", err, "line", string(line))
}
