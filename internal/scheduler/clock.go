// internal/scheduler/clock.go
package scheduler

import "time"

type (
	// Clock abstracts the subset of package time the scheduler needs.
	Clock interface {
		Now() time.Time
		NewTimer(d time.Duration) Timer
	}

	// Timer abstracts time.Timer.
	Timer interface {
		C() <-chan time.Time
		Reset(d time.Duration) bool
		Stop() bool
	}

	wallClock struct{}

	timer struct {
		*time.Timer
	}
)

// Now indirects time.Now. The result carries a monotonic reading.
func (wallClock) Now() time.Time { return time.Now() }

// NewTimer indirects time.NewTimer.
func (wallClock) NewTimer(d time.Duration) Timer {
	return timer{Timer: time.NewTimer(d)}
}

// C indirects time.Timer.C.
func (t timer) C() <-chan time.Time { return t.Timer.C }

// WallClock is the real clock.
var WallClock Clock = wallClock{}
