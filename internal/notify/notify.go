// internal/notify/notify.go
package notify

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInterrupted is returned by Wait when the caller's context ends first.
	ErrInterrupted = errors.New("notify: wait interrupted")

	// ErrClosed is returned by Wait once the notifier has been closed.
	ErrClosed = errors.New("notify: closed")
)

// Notifier wakes every blocked reader when new data is published.
//
// Readers block in Wait with a predicate they re-check after each wake.
// Pollers register interest with Watch and get a channel closed by the next
// Signal. Signal must be called after the data is visible to the predicate.
type Notifier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	watch  chan struct{}
	closed bool
}

// New returns an open notifier.
func New() *Notifier {
	n := &Notifier{}
	n.cond = sync.NewCond(&n.mu)
	return n
}

// Signal wakes all current waiters and watchers. It never blocks on readers
// and allocates nothing.
func (n *Notifier) Signal() {
	n.mu.Lock()
	if n.watch != nil {
		close(n.watch)
		n.watch = nil
	}
	n.mu.Unlock()
	n.cond.Broadcast()
}

// Wait blocks until ready reports true, ctx ends, or the notifier is closed.
// ready is evaluated with the notifier lock held, so it must not call back
// into the notifier.
func (n *Notifier) Wait(ctx context.Context, ready func() bool) error {
	if err := ctx.Err(); err != nil {
		return ErrInterrupted
	}

	// Cancellation has to reach a goroutine parked in cond.Wait.
	stop := context.AfterFunc(ctx, func() {
		n.mu.Lock()
		n.cond.Broadcast()
		n.mu.Unlock()
	})
	defer stop()

	n.mu.Lock()
	defer n.mu.Unlock()
	for !ready() {
		if n.closed {
			return ErrClosed
		}
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		n.cond.Wait()
	}
	return nil
}

// Watch registers interest in the next Signal. The returned channel is closed
// by that Signal or by Close. Watchers registered between two signals share
// one channel.
func (n *Notifier) Watch() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return closedChan
	}
	if n.watch == nil {
		n.watch = make(chan struct{})
	}
	return n.watch
}

// Close wakes everyone for the last time. Later waits fail with ErrClosed
// unless their predicate already holds.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	if n.watch != nil {
		close(n.watch)
		n.watch = nil
	}
	n.mu.Unlock()
	n.cond.Broadcast()
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()
