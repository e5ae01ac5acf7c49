// internal/sink/types.go
package sink

import (
	"context"

	"github.com/tamzrod/simtemp/internal/sample"
	"github.com/tamzrod/simtemp/internal/status"
)

// Deliverer pushes one sample to an external consumer.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, s sample.Sample) error
}

// BatchDeliverer is a Deliverer that can ship several samples in one request.
type BatchDeliverer interface {
	Deliverer
	DeliverBatch(ctx context.Context, batch []sample.Sample) error
}

// Reader is the session surface the relay drains.
type Reader interface {
	Read(ctx context.Context, blocking bool) (sample.Sample, error)
}

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// registerClient is the exact contract the modbus writers use.
type registerClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan locates the device status block in target memory.
type StatusPlan struct {
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}
