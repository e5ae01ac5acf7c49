// internal/device/errors.go
package device

import "errors"

// Read outcomes other than a sample. None of them mutate buffer state.
var (
	// ErrWouldBlock: nothing queued right now. Transient, not a failure.
	ErrWouldBlock = errors.New("device: no sample available")

	// ErrInterrupted: the caller's context ended while waiting.
	ErrInterrupted = errors.New("device: read interrupted")

	// ErrRecordTooSmall: the destination cannot hold one record. Nothing was consumed.
	ErrRecordTooSmall = errors.New("device: destination smaller than one record")

	// ErrDetached: the device is gone. Waiters are released with this on detach.
	ErrDetached = errors.New("device: detached")

	// ErrSessionClosed: the session was closed by its owner.
	ErrSessionClosed = errors.New("device: session closed")
)
