// internal/scheduler/scheduler.go
package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// TickFunc runs once per firing. deadline is the scheduled instant,
// now is when the firing was observed.
type TickFunc func(deadline, now time.Time)

// Config is the minimal runtime config the scheduler needs.
type Config struct {
	Name     string
	Interval time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// ErrRunning is returned by Start on a running scheduler.
var ErrRunning = errors.New("scheduler: already running")

// Scheduler is a dumb, clock-driven tick source.
// Stopped -> Running -> Stopped. One goroutine while running. No overlap.
// No retries and no catch-up: a missed firing shifts the next one.
type Scheduler struct {
	cfg   Config
	tick  TickFunc
	clock Clock
	log   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a stopped scheduler with immutable config.
func New(cfg Config, tick TickFunc, opts ...Option) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("scheduler: interval must be > 0")
	}
	if tick == nil {
		return nil, errors.New("scheduler: tick func required")
	}
	s := &Scheduler{
		cfg:   cfg,
		tick:  tick,
		clock: WallClock,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Start arms the timer. The first firing is one interval from now.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return ErrRunning
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
	s.log.Debug("scheduler started", "name", s.cfg.Name, "interval", s.cfg.Interval)
	return nil
}

// Stop cancels pending firings and waits for an in-flight tick to finish.
// After Stop returns the tick func is never called again (until Start).
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
	s.log.Debug("scheduler stopped", "name", s.cfg.Name)
}

// Running reports whether the scheduler is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := s.cfg.Interval
	next := s.clock.Now().Add(interval)
	t := s.clock.NewTimer(interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
		}

		// A firing that races with Stop loses.
		select {
		case <-stop:
			return
		default:
		}

		now := s.clock.Now()
		s.tick(next, now)

		next = NextDeadline(next, now, interval)
		t.Reset(next.Sub(s.clock.Now()))
	}
}

// NextDeadline returns the first deadline strictly after now on the grid
// prev + k*interval. Missed deadlines are skipped, never replayed.
func NextDeadline(prev, now time.Time, interval time.Duration) time.Time {
	next := prev.Add(interval)
	if next.After(now) {
		return next
	}
	missed := now.Sub(prev) / interval
	return prev.Add((missed + 1) * interval)
}
