// Package feed supervises one connection to gpsd: it dials, runs the
// watch handshake, streams typed reports, and aggregates them into an
// atomically-published Snapshot, reconnecting with backoff when the
// connection drops. Protocol work is done by the gpsd package; this
// layer only adds the caller-side lifecycle the protocol core leaves
// out.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gpsdclient/gpsd"
)

const defaultAddr = "127.0.0.1:2947"

type Config struct {
	// Addr is the gpsd host:port. Defaults to 127.0.0.1:2947.
	Addr string

	DialTimeout    time.Duration
	ReconnectDelay time.Duration
	MaxBackoff     time.Duration
	MaxLineBytes   int

	// Logger receives connection lifecycle events. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Tracer, when set, is passed through to the protocol session.
	Tracer gpsd.Tracer
}

// Service owns one gpsd connection for its lifetime.
type Service struct {
	cfg Config
	log *slog.Logger

	started atomic.Bool
	closed  atomic.Bool

	last atomic.Value // Snapshot

	mu     sync.Mutex
	cancel context.CancelFunc
	closer io.Closer
	done   chan struct{}
}

func New(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 250 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = 256 * 1024
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Service{cfg: cfg, log: log, done: make(chan struct{})}
	s.last.Store(Snapshot{Addr: cfg.Addr, State: "stopped"})
	return s, nil
}

// Start begins dialing and streaming in the background. onReport, when
// non-nil, is called with every decoded report; it runs on the reading
// goroutine and should not block.
func (s *Service) Start(ctx context.Context, onReport func(gpsd.DataReport)) error {
	if s == nil {
		return fmt.Errorf("feed service is nil")
	}

	// started and cancel flip together under mu so a concurrent Close
	// either sees neither (and skips the wait) or both (and cancels).
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return fmt.Errorf("feed service is closed")
	}
	if s.started.Swap(true) {
		s.mu.Unlock()
		return fmt.Errorf("feed service already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		s.runLoop(runCtx, onReport)
	}()
	return nil
}

// Close stops the service and interrupts any blocked read. Safe to
// call more than once.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if s.closed.Swap(true) {
		return
	}
	s.mu.Lock()
	started := s.started.Load()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	if started {
		<-s.done
	}
}

// Snapshot returns the most recent aggregate view. Safe for concurrent
// use.
func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

func (s *Service) runLoop(ctx context.Context, onReport func(gpsd.DataReport)) {
	dialer := &net.Dialer{Timeout: s.cfg.DialTimeout}
	st := newFixState(s.cfg.Addr)
	backoff := s.cfg.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			s.publish(st, false, "stopped", "")
			return
		default:
		}

		s.publish(st, false, "connecting", "")
		conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr)
		if err != nil {
			s.log.Warn("gpsd dial failed", "addr", s.cfg.Addr, "err", err)
			s.publish(st, false, "error", err.Error())
			if !sleepCtx(ctx, backoff) {
				s.publish(st, false, "stopped", "")
				return
			}
			if backoff < s.cfg.MaxBackoff {
				backoff *= 2
				if backoff > s.cfg.MaxBackoff {
					backoff = s.cfg.MaxBackoff
				}
			}
			continue
		}

		s.mu.Lock()
		// Swap the closer so Close() can interrupt an active read.
		s.closer = conn
		s.mu.Unlock()

		opts := []gpsd.Option{gpsd.WithMaxLineBytes(s.cfg.MaxLineBytes)}
		if s.cfg.Tracer != nil {
			opts = append(opts, gpsd.WithTracer(s.cfg.Tracer))
		}
		sess := gpsd.NewSession(conn, conn, opts...)

		if err := sess.Handshake(); err != nil {
			_ = conn.Close()
			s.log.Warn("gpsd handshake failed", "addr", s.cfg.Addr, "err", err)
			s.publish(st, false, "error", err.Error())

			// A version or negotiation mismatch won't fix itself;
			// stop instead of hammering the daemon.
			var ve *gpsd.UnsupportedVersionError
			var we *gpsd.WatchNegotiationError
			if errors.As(err, &ve) || errors.As(err, &we) {
				s.publish(st, false, "stopped", err.Error())
				return
			}

			if !sleepCtx(ctx, backoff) {
				s.publish(st, false, "stopped", "")
				return
			}
			if backoff < s.cfg.MaxBackoff {
				backoff *= 2
				if backoff > s.cfg.MaxBackoff {
					backoff = s.cfg.MaxBackoff
				}
			}
			continue
		}

		s.log.Info("gpsd connected", "addr", s.cfg.Addr)
		backoff = s.cfg.ReconnectDelay
		s.publish(st, true, "connected", "")
		s.readReports(ctx, sess, conn, st, onReport)

		if ctx.Err() != nil {
			s.publish(st, false, "stopped", "")
			return
		}
		if !sleepCtx(ctx, backoff) {
			s.publish(st, false, "stopped", "")
			return
		}
	}
}

func (s *Service) readReports(ctx context.Context, sess *gpsd.Session, conn net.Conn, st *fixState, onReport func(gpsd.DataReport)) {
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r, err := sess.Next()
		if err != nil {
			var de *gpsd.DecodeError
			if errors.As(err, &de) {
				// Bad line, healthy stream. Record and keep reading.
				s.publish(st, true, "connected", de.Error())
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				s.publish(st, false, "disconnected", "")
			} else {
				s.log.Warn("gpsd read stopped", "addr", s.cfg.Addr, "err", err)
				s.publish(st, false, "disconnected", err.Error())
			}
			return
		}

		if st.apply(time.Now().UTC(), r) {
			s.publish(st, true, "connected", "")
		}
		if onReport != nil {
			onReport(r)
		}
	}
}

func (s *Service) publish(st *fixState, connected bool, state, lastErr string) {
	snap := st.snapshot(connected, state, lastErr)
	if lastErr == "" {
		// Keep the previous error visible through transient states so
		// status output explains why the fix went away.
		if state == "error" || state == "disconnected" {
			snap.LastError = s.Snapshot().LastError
		}
	}
	s.last.Store(snap)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
