// internal/notify/notify_test.go
package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWait_ReturnsImmediatelyWhenReady(t *testing.T) {
	n := New()
	require.NoError(t, n.Wait(context.Background(), func() bool { return true }))
}

func TestWait_WakesOnSignalAfterPublish(t *testing.T) {
	n := New()
	var avail atomic.Bool

	errc := make(chan error, 1)
	go func() {
		errc <- n.Wait(context.Background(), avail.Load)
	}()

	// no data yet: the waiter must stay parked
	select {
	case err := <-errc:
		t.Fatalf("wait returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	avail.Store(true)
	n.Signal()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestWait_SpuriousSignalRechecks(t *testing.T) {
	n := New()
	var avail atomic.Bool

	errc := make(chan error, 1)
	go func() {
		errc <- n.Wait(context.Background(), avail.Load)
	}()

	// signals without data must not release the waiter
	for i := 0; i < 5; i++ {
		n.Signal()
		time.Sleep(2 * time.Millisecond)
	}
	select {
	case err := <-errc:
		t.Fatalf("wait returned without data: %v", err)
	default:
	}

	avail.Store(true)
	n.Signal()
	require.NoError(t, <-errc)
}

func TestWait_BroadcastWakesAll(t *testing.T) {
	n := New()
	var avail atomic.Bool

	const waiters = 8
	var wg sync.WaitGroup
	var woke atomic.Int32
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n.Wait(context.Background(), avail.Load) == nil {
				woke.Add(1)
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	avail.Store(true)
	n.Signal()
	wg.Wait()

	require.Equal(t, int32(waiters), woke.Load())
}

func TestWait_Interrupted(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() {
		errc <- n.Wait(ctx, func() bool { return false })
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(time.Second):
		t.Fatal("cancel did not interrupt wait")
	}
}

func TestWait_AlreadyCancelled(t *testing.T) {
	n := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, n.Wait(ctx, func() bool { return true }), ErrInterrupted)
}

func TestWait_DeadlineIsInterrupt(t *testing.T) {
	n := New()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Wait(ctx, func() bool { return false })
	require.ErrorIs(t, err, ErrInterrupted)
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestClose_ReleasesWaitersAndWatchers(t *testing.T) {
	n := New()
	w := n.Watch()

	errc := make(chan error, 1)
	go func() {
		errc <- n.Wait(context.Background(), func() bool { return false })
	}()

	time.Sleep(10 * time.Millisecond)
	n.Close()
	n.Close() // idempotent

	require.ErrorIs(t, <-errc, ErrClosed)
	_, open := <-w
	require.False(t, open)
	require.ErrorIs(t, n.Wait(context.Background(), func() bool { return false }), ErrClosed)
	require.NoError(t, n.Wait(context.Background(), func() bool { return true }))

	_, open = <-n.Watch()
	require.False(t, open, "watch after close must be ready")
}

func TestWatch_ClosedByNextSignalOnly(t *testing.T) {
	n := New()

	w1 := n.Watch()
	w2 := n.Watch()
	require.Equal(t, w1, w2, "watchers between signals share a channel")

	select {
	case <-w1:
		t.Fatal("watch fired before signal")
	default:
	}

	n.Signal()
	_, open := <-w1
	require.False(t, open)

	w3 := n.Watch()
	select {
	case <-w3:
		t.Fatal("new watch must wait for the next signal")
	default:
	}
}
