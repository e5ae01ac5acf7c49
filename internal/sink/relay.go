// internal/sink/relay.go
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/simtemp/internal/device"
	"github.com/tamzrod/simtemp/internal/metrics"
	"github.com/tamzrod/simtemp/internal/sample"
	"github.com/tamzrod/simtemp/internal/status"
)

// Relay drains one session and fans every sample out to the sinks.
// It owns the device status snapshot and keeps it current.
type Relay struct {
	src    Reader
	sinks  []Deliverer
	status StatusWriter

	staleAfter time.Duration
	tick       time.Duration
	maxBatch   int
	log        *slog.Logger
}

type RelayOption func(*Relay)

// WithStatus enables status block updates.
func WithStatus(w StatusWriter) RelayOption {
	return func(r *Relay) { r.status = w }
}

// WithStaleAfter sets how long without a sample flips health to stale.
func WithStaleAfter(d time.Duration) RelayOption {
	return func(r *Relay) { r.staleAfter = d }
}

// WithSecondsTick overrides the seconds_stale tick period.
func WithSecondsTick(d time.Duration) RelayOption {
	return func(r *Relay) { r.tick = d }
}

// WithMaxBatch caps how many queued samples one delivery carries.
func WithMaxBatch(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.maxBatch = n
		}
	}
}

func WithLogger(l *slog.Logger) RelayOption {
	return func(r *Relay) { r.log = l }
}

func NewRelay(src Reader, sinks []Deliverer, opts ...RelayOption) *Relay {
	r := &Relay{
		src:        src,
		sinks:      sinks,
		staleAfter: 3 * time.Second,
		tick:       time.Second,
		maxBatch:   32,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run blocks until ctx is done or the device goes away.
// A cancelled ctx returns nil; a detached device returns device.ErrDetached.
func (r *Relay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan []sample.Sample)
	errc := make(chan error, 1)
	go r.pump(ctx, out, errc)

	// Default snapshot state on start.
	snap := status.Snapshot{Health: status.HealthUnknown}
	r.writeStatus(snap, "start")

	last := time.Now()
	secTicker := time.NewTicker(r.tick)
	defer secTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errc:
			if errors.Is(err, device.ErrDetached) {
				snap.Health = status.HealthDisabled
				r.writeStatus(snap, "detach")
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("relay: read: %w", err)

		case batch := <-out:
			last = time.Now()
			s := batch[len(batch)-1]

			next := snap
			next.LastFlags = uint16(s.Flags)
			next.LastTemperature = s.Temperature
			if r.deliver(ctx, batch) {
				next.Health = status.HealthOK
				next.SecondsStale = 0
			} else {
				// seconds_stale keeps counting while in error
				next.Health = status.HealthError
			}

			if next != snap {
				snap = next
				r.writeStatus(snap, "sample")
			}

		case <-secTicker.C:
			changed := false

			if snap.Health != status.HealthStale && time.Since(last) >= r.staleAfter {
				r.log.Warn("no samples", "for", time.Since(last).Round(time.Millisecond))
				snap.Health = status.HealthStale
				changed = true
			}

			// Tick 1 Hz while not OK.
			if snap.Health != status.HealthOK && snap.SecondsStale < status.SecondsStaleMax {
				snap.SecondsStale++
				changed = true
			}

			if changed {
				r.writeStatus(snap, "seconds tick")
			}
		}
	}
}

// pump performs a blocking read, takes whatever else is already queued
// (up to maxBatch) without waiting, and hands the batch to Run.
func (r *Relay) pump(ctx context.Context, out chan<- []sample.Sample, errc chan<- error) {
	for {
		s, err := r.src.Read(ctx, true)
		switch {
		case err == nil:
			batch := []sample.Sample{s}
			for len(batch) < r.maxBatch {
				more, err := r.src.Read(ctx, false)
				if err != nil {
					// WouldBlock ends the batch; anything else resurfaces on the next blocking read
					break
				}
				batch = append(batch, more)
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		case errors.Is(err, device.ErrWouldBlock):
			// woke with nothing to take; read again
		default:
			errc <- err
			return
		}
	}
}

// deliver hands batch to every sink. It reports false only when sinks are
// configured and none of them took the whole batch.
func (r *Relay) deliver(ctx context.Context, batch []sample.Sample) bool {
	if len(r.sinks) == 0 {
		return true
	}

	delivered := 0
	for _, d := range r.sinks {
		if err := deliverTo(ctx, d, batch); err != nil {
			metrics.SinkOperations.WithLabelValues(d.Name(), "error").Inc()
			r.log.Error("sink delivery failed",
				"sink", d.Name(),
				"ts", batch[0].Timestamp,
				"samples", len(batch),
				"err", err,
			)
			continue
		}
		metrics.SinkOperations.WithLabelValues(d.Name(), "success").Inc()
		delivered++
	}
	return delivered > 0
}

func deliverTo(ctx context.Context, d Deliverer, batch []sample.Sample) error {
	if bd, ok := d.(BatchDeliverer); ok && len(batch) > 1 {
		return bd.DeliverBatch(ctx, batch)
	}
	for _, s := range batch {
		if err := d.Deliver(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relay) writeStatus(s status.Snapshot, when string) {
	if r.status == nil {
		return
	}
	if err := r.status.WriteStatus(s); err != nil {
		metrics.SinkOperations.WithLabelValues("status", "error").Inc()
		r.log.Error("status write failed", "when", when, "err", err)
		return
	}
	metrics.SinkOperations.WithLabelValues("status", "success").Inc()
}
