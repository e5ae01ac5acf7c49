// internal/device/device.go
package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/simtemp/internal/config"
	"github.com/tamzrod/simtemp/internal/metrics"
	"github.com/tamzrod/simtemp/internal/notify"
	"github.com/tamzrod/simtemp/internal/ringbuf"
	"github.com/tamzrod/simtemp/internal/sample"
	"github.com/tamzrod/simtemp/internal/scheduler"
)

// Device is one attached simulated sensor. It owns the ring buffer, the
// scheduler that fills it and the notifier that wakes its readers.
// Readers reach the buffer only through sessions.
type Device struct {
	cfg   config.DeviceConfig
	log   *slog.Logger
	clock scheduler.Clock
	epoch time.Time

	ring   *ringbuf.Ring[sample.Sample]
	notify *notify.Notifier
	gen    *sample.Generator
	sched  *scheduler.Scheduler
	m      *metrics.Device

	detached   atomic.Bool
	detachOnce sync.Once

	generated atomic.Uint64
	dropped   atomic.Uint64
	exceeded  atomic.Uint64
	delivered atomic.Uint64
	sessions  atomic.Int64
}

// Stats is a point-in-time view of device counters.
type Stats struct {
	Generated uint64
	Dropped   uint64
	Exceeded  uint64
	Delivered uint64
	Queued    int
	Capacity  int
	Sessions  int64
	Sampling  bool // scheduler armed
}

// Option configures Attach.
type Option func(*options)

type options struct {
	log   *slog.Logger
	clock scheduler.Clock
	src   sample.Source
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces the wall clock used for scheduling and timestamps.
func WithClock(c scheduler.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithSource replaces the randomness source derived from the config seed.
func WithSource(src sample.Source) Option {
	return func(o *options) { o.src = src }
}

// Attach creates the device from an already normalized config and starts sampling.
func Attach(cfg config.DeviceConfig, opts ...Option) (*Device, error) {
	o := options{clock: scheduler.WallClock}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	if o.src == nil {
		o.src = sample.NewSource(cfg.Seed)
	}
	if cfg.Variation() < 0 {
		return nil, fmt.Errorf("device %s: variation must be >= 0", cfg.Name)
	}

	ring, err := ringbuf.New[sample.Sample](cfg.BufferCapacity)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", cfg.Name, err)
	}

	log := o.log.With("device", cfg.Name)
	d := &Device{
		cfg:    cfg,
		log:    log,
		clock:  o.clock,
		epoch:  o.clock.Now(),
		ring:   ring,
		notify: notify.New(),
		gen: sample.NewGenerator(sample.Params{
			Baseline:  cfg.Baseline(),
			Variation: cfg.Variation(),
			Threshold: cfg.Threshold(),
		}, o.src),
		m: metrics.ForDevice(cfg.Name),
	}

	d.sched, err = scheduler.New(
		scheduler.Config{Name: cfg.Name, Interval: cfg.Interval()},
		d.tick,
		scheduler.WithClock(o.clock),
		scheduler.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", cfg.Name, err)
	}
	if err := d.sched.Start(); err != nil {
		return nil, fmt.Errorf("device %s: %w", cfg.Name, err)
	}

	log.Info("device attached",
		"sampling", cfg.Interval(),
		"threshold_mc", cfg.Threshold(),
		"baseline_mc", cfg.Baseline(),
		"variation_mc", cfg.Variation(),
		"capacity", ring.Cap(),
	)
	return d, nil
}

// tick is the producer: generate, publish, then signal. It never blocks on
// readers and never allocates.
func (d *Device) tick(deadline, now time.Time) {
	s := d.gen.Generate(now.Sub(d.epoch))

	if d.ring.Push(s) {
		d.dropped.Add(1)
		d.m.Dropped.Inc()
	}
	d.generated.Add(1)
	d.m.Generated.Inc()
	if s.Exceeded() {
		d.exceeded.Add(1)
		d.m.Exceeded.Inc()
	}

	// signal only once the sample is visible to readers
	d.notify.Signal()

	d.m.Depth.Set(float64(d.ring.Len()))
	if late := now.Sub(deadline); late > 0 {
		d.m.Lateness.Observe(late.Seconds())
	} else {
		d.m.Lateness.Observe(0)
	}

	if d.log.Enabled(context.Background(), slog.LevelDebug) {
		d.log.Debug("sample", "ts", s.Timestamp, "temp_mc", s.Temperature, "flags", s.Flags.String())
	}
}

// Detach stops sampling, then releases every waiter with ErrDetached.
// The scheduler is stopped first so no push can follow. Idempotent.
func (d *Device) Detach() {
	d.detachOnce.Do(func() {
		d.detached.Store(true)
		d.sched.Stop()
		d.notify.Close()
		d.log.Info("device detached",
			"generated", d.generated.Load(),
			"dropped", d.dropped.Load(),
			"delivered", d.delivered.Load(),
		)
	})
}

// Detached reports whether Detach has run.
func (d *Device) Detached() bool { return d.detached.Load() }

// Config returns the immutable device config.
func (d *Device) Config() config.DeviceConfig { return d.cfg }

// Name returns the device name.
func (d *Device) Name() string { return d.cfg.Name }

// Now returns the current device time in the sample timestamp base.
func (d *Device) Now() uint64 {
	return uint64(d.clock.Now().Sub(d.epoch))
}

// Stats returns the device counters.
func (d *Device) Stats() Stats {
	return Stats{
		Generated: d.generated.Load(),
		Dropped:   d.dropped.Load(),
		Exceeded:  d.exceeded.Load(),
		Delivered: d.delivered.Load(),
		Queued:    d.ring.Len(),
		Capacity:  d.ring.Cap(),
		Sessions:  d.sessions.Load(),
		Sampling:  d.sched.Running(),
	}
}
