// internal/device/session.go
package device

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/simtemp/internal/notify"
	"github.com/tamzrod/simtemp/internal/sample"
)

// OpenOptions are the per-handle open flags.
type OpenOptions struct {
	// NonBlocking makes ReadRecord return ErrWouldBlock instead of waiting.
	NonBlocking bool
}

// Session is one open handle on a device. Sessions are safe for concurrent
// use; several sessions (or goroutines on one session) may race for the same
// sample and exactly one of them gets it.
type Session struct {
	id          string
	dev         *Device
	nonBlocking bool
	log         *slog.Logger
	closed      atomic.Bool
}

// Open returns a new session on the device.
func (d *Device) Open(opts OpenOptions) (*Session, error) {
	if d.detached.Load() {
		return nil, ErrDetached
	}

	s := &Session{
		id:          uuid.NewString(),
		dev:         d,
		nonBlocking: opts.NonBlocking,
	}
	s.log = d.log.With("session", s.id)

	d.sessions.Add(1)
	d.m.Sessions.Inc()
	s.log.Info("session opened", "nonblock", opts.NonBlocking)
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Read returns the oldest queued sample.
//
// Empty and non-blocking: ErrWouldBlock. Empty and blocking: wait for the next
// publish, then retry the pop once. If another reader won that sample the
// result is ErrWouldBlock; callers that need a sample loop. A cancelled ctx
// yields ErrInterrupted and leaves the buffer untouched.
func (s *Session) Read(ctx context.Context, blocking bool) (sample.Sample, error) {
	if err := s.check(); err != nil {
		return sample.Sample{}, err
	}
	d := s.dev

	if v, ok := d.ring.Pop(); ok {
		return s.delivered(v), nil
	}
	if !blocking {
		d.m.WouldBlock.Inc()
		return sample.Sample{}, ErrWouldBlock
	}

	if err := d.notify.Wait(ctx, d.ring.NotEmpty); err != nil {
		switch {
		case errors.Is(err, notify.ErrInterrupted):
			d.m.Interrupted.Inc()
			return sample.Sample{}, ErrInterrupted
		case errors.Is(err, notify.ErrClosed):
			d.m.Detached.Inc()
			return sample.Sample{}, ErrDetached
		default:
			return sample.Sample{}, err
		}
	}

	if v, ok := d.ring.Pop(); ok {
		return s.delivered(v), nil
	}

	s.log.Warn("woke with data but buffer empty on retry")
	d.m.WouldBlock.Inc()
	return sample.Sample{}, ErrWouldBlock
}

// ReadRecord reads one sample in the session's open mode and encodes it
// into p. It writes exactly sample.RecordSize bytes or nothing.
func (s *Session) ReadRecord(ctx context.Context, p []byte) (int, error) {
	if len(p) < sample.RecordSize {
		s.dev.m.TooSmall.Inc()
		return 0, ErrRecordTooSmall
	}

	v, err := s.Read(ctx, !s.nonBlocking)
	if err != nil {
		return 0, err
	}
	if err := sample.PutRecord(p, v); err != nil {
		return 0, err
	}
	return sample.RecordSize, nil
}

// Poll registers interest in the next publish and reports whether a read
// would succeed right now. wake is closed by the next publish or by detach.
// Nothing is consumed.
func (s *Session) Poll() (readable bool, wake <-chan struct{}) {
	// register before sampling so a publish in between still closes wake
	wake = s.dev.notify.Watch()
	if s.closed.Load() || s.dev.detached.Load() {
		return false, wake
	}
	return s.dev.ring.NotEmpty(), wake
}

// WaitReadable polls until the session is readable, ctx ends or timeout
// elapses. timeout <= 0 waits without bound. It returns false, nil on timeout.
func (s *Session) WaitReadable(ctx context.Context, timeout time.Duration) (bool, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		if err := s.check(); err != nil {
			return false, err
		}
		readable, wake := s.Poll()
		if readable {
			return true, nil
		}

		select {
		case <-wake:
		case <-expired:
			return false, nil
		case <-ctx.Done():
			return false, ErrInterrupted
		}
	}
}

// Close releases the session. Reads on a closed session fail with ErrSessionClosed.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.dev.sessions.Add(-1)
	s.dev.m.Sessions.Dec()
	s.log.Info("session closed")
	return nil
}

func (s *Session) check() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.dev.detached.Load() {
		s.dev.m.Detached.Inc()
		return ErrDetached
	}
	return nil
}

func (s *Session) delivered(v sample.Sample) sample.Sample {
	s.dev.delivered.Add(1)
	s.dev.m.Sample.Inc()
	s.dev.m.Depth.Set(float64(s.dev.ring.Len()))
	return v
}
