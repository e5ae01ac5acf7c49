// internal/sink/relay_test.go
package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/simtemp/internal/config"
	"github.com/tamzrod/simtemp/internal/device"
	"github.com/tamzrod/simtemp/internal/sample"
	"github.com/tamzrod/simtemp/internal/status"
)

// chanReader blocks like a session until a sample or error is queued.
type chanReader struct {
	samples chan sample.Sample
	errs    chan error
}

func newChanReader() *chanReader {
	return &chanReader{samples: make(chan sample.Sample, 8), errs: make(chan error, 1)}
}

func (r *chanReader) Read(ctx context.Context, blocking bool) (sample.Sample, error) {
	if !blocking {
		select {
		case s := <-r.samples:
			return s, nil
		default:
			return sample.Sample{}, device.ErrWouldBlock
		}
	}
	select {
	case s := <-r.samples:
		return s, nil
	case err := <-r.errs:
		return sample.Sample{}, err
	case <-ctx.Done():
		return sample.Sample{}, device.ErrInterrupted
	}
}

type recordingSink struct {
	name string
	fail error

	mu  sync.Mutex
	got []sample.Sample
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, v sample.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, v)
	return s.fail
}

func (s *recordingSink) samples() []sample.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sample.Sample(nil), s.got...)
}

// batchSink also accepts whole batches.
type batchSink struct {
	recordingSink

	mu      sync.Mutex
	batches [][]sample.Sample
}

func (b *batchSink) DeliverBatch(_ context.Context, batch []sample.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches = append(b.batches, append([]sample.Sample(nil), batch...))
	return nil
}

func (b *batchSink) seen() [][]sample.Sample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]sample.Sample(nil), b.batches...)
}

type recordingStatus struct {
	mu    sync.Mutex
	snaps []status.Snapshot
}

func (r *recordingStatus) WriteStatus(s status.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
	return nil
}

func (r *recordingStatus) last() status.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return status.Snapshot{}
	}
	return r.snaps[len(r.snaps)-1]
}

func (r *recordingStatus) seen(match func(status.Snapshot) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.snaps {
		if match(s) {
			return true
		}
	}
	return false
}

func testDeviceConfig() config.DeviceConfig {
	return config.DeviceConfig{
		Name:           "relay0",
		SamplingMs:     5,
		BufferCapacity: 16,
		Seed:           7,
	}
}

func startRelay(t *testing.T, r *Relay) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return done
}

func TestRelay_FansOutAndReportsOK(t *testing.T) {
	src := newChanReader()
	good := &recordingSink{name: "good"}
	bad := &recordingSink{name: "bad", fail: errors.New("down")}
	st := &recordingStatus{}

	r := NewRelay(src, []Deliverer{bad, good}, WithStatus(st), WithStaleAfter(time.Hour))
	startRelay(t, r)

	s := sample.Sample{Timestamp: 100, Temperature: 45001, Flags: sample.FlagNew | sample.FlagThresholdExceeded}
	src.samples <- s

	require.Eventually(t, func() bool { return len(good.samples()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, []sample.Sample{s}, bad.samples())
	require.Equal(t, []sample.Sample{s}, good.samples())

	require.Eventually(t, func() bool {
		return st.last() == status.Snapshot{Health: status.HealthOK, LastFlags: 3, LastTemperature: 45001}
	}, time.Second, time.Millisecond)
}

func TestRelay_BatchesQueuedSamples(t *testing.T) {
	src := newChanReader()
	for i := 1; i <= 3; i++ {
		src.samples <- sample.Sample{Timestamp: uint64(i)}
	}

	batched := &batchSink{recordingSink: recordingSink{name: "batch"}}
	single := &recordingSink{name: "single"}

	startRelay(t, NewRelay(src, []Deliverer{batched, single}, WithStaleAfter(time.Hour)))

	require.Eventually(t, func() bool { return len(single.samples()) == 3 }, time.Second, time.Millisecond)

	want := []sample.Sample{{Timestamp: 1}, {Timestamp: 2}, {Timestamp: 3}}
	require.Equal(t, want, single.samples())
	require.Equal(t, [][]sample.Sample{want}, batched.seen())
	require.Empty(t, batched.samples(), "a batch of several goes through DeliverBatch only")
}

func TestRelay_MaxBatch(t *testing.T) {
	src := newChanReader()
	for i := 1; i <= 3; i++ {
		src.samples <- sample.Sample{Timestamp: uint64(i)}
	}

	batched := &batchSink{recordingSink: recordingSink{name: "batch"}}
	startRelay(t, NewRelay(src, []Deliverer{batched}, WithMaxBatch(2), WithStaleAfter(time.Hour)))

	require.Eventually(t, func() bool {
		return len(batched.seen()) == 1 && len(batched.samples()) == 1
	}, time.Second, time.Millisecond)
	require.Len(t, batched.seen()[0], 2)
	require.Equal(t, uint64(3), batched.samples()[0].Timestamp)
}

func TestRelay_AllSinksFailingIsError(t *testing.T) {
	src := newChanReader()
	st := &recordingStatus{}
	bad := &recordingSink{name: "bad", fail: errors.New("down")}

	r := NewRelay(src, []Deliverer{bad},
		WithStatus(st),
		WithStaleAfter(time.Hour),
		WithSecondsTick(5*time.Millisecond),
	)
	startRelay(t, r)

	src.samples <- sample.Sample{Temperature: 40000, Flags: sample.FlagNew}

	require.Eventually(t, func() bool {
		l := st.last()
		return l.Health == status.HealthError && l.LastTemperature == 40000 && l.SecondsStale >= 2
	}, time.Second, time.Millisecond)
}

func TestRelay_StaleThenRecover(t *testing.T) {
	src := newChanReader()
	st := &recordingStatus{}

	r := NewRelay(src, nil,
		WithStatus(st),
		WithStaleAfter(10*time.Millisecond),
		WithSecondsTick(5*time.Millisecond),
	)
	startRelay(t, r)

	require.Eventually(t, func() bool {
		l := st.last()
		return l.Health == status.HealthStale && l.SecondsStale >= 2
	}, time.Second, time.Millisecond)

	src.samples <- sample.Sample{Temperature: 36000, Flags: sample.FlagNew}

	// staleness may set in again right after, so look through the history
	require.Eventually(t, func() bool {
		return st.seen(func(l status.Snapshot) bool {
			return l.Health == status.HealthOK && l.SecondsStale == 0 && l.LastTemperature == 36000
		})
	}, time.Second, time.Millisecond)
}

func TestRelay_DetachDisables(t *testing.T) {
	src := newChanReader()
	st := &recordingStatus{}

	done := startRelay(t, NewRelay(src, nil, WithStatus(st), WithStaleAfter(time.Hour)))

	src.errs <- device.ErrDetached

	select {
	case err := <-done:
		require.ErrorIs(t, err, device.ErrDetached)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on detach")
	}
	require.Equal(t, status.HealthDisabled, st.last().Health)
}

func TestRelay_CancelReturnsNil(t *testing.T) {
	src := newChanReader()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewRelay(src, nil).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on cancel")
	}
}

func TestRelay_AgainstDevice(t *testing.T) {
	d, err := device.Attach(testDeviceConfig())
	require.NoError(t, err)
	defer d.Detach()

	sess, err := d.Open(device.OpenOptions{})
	require.NoError(t, err)
	defer sess.Close()

	sink := &recordingSink{name: "rec"}
	done := startRelay(t, NewRelay(sess, []Deliverer{sink}))

	require.Eventually(t, func() bool { return len(sink.samples()) >= 2 }, 2*time.Second, time.Millisecond)

	got := sink.samples()
	require.Less(t, got[0].Timestamp, got[1].Timestamp)
	require.True(t, got[0].Flags.Has(sample.FlagNew))

	d.Detach()
	select {
	case err := <-done:
		require.ErrorIs(t, err, device.ErrDetached)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on detach")
	}
}
