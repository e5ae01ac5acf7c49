// internal/sink/writer.go
package sink

import (
	"context"
	"fmt"

	"github.com/tamzrod/simtemp/internal/sample"
	"github.com/tamzrod/simtemp/internal/status"
)

// RegisterWriter writes each sample as a fixed register block.
type RegisterWriter struct {
	cli    registerClient
	unitID uint8
	addr   uint16
}

// NewRegisterWriter returns a writer placing the sample block at addr on unitID.
func NewRegisterWriter(cli registerClient, unitID uint8, addr uint16) *RegisterWriter {
	return &RegisterWriter{cli: cli, unitID: unitID, addr: addr}
}

func (w *RegisterWriter) Name() string { return "modbus" }

// Deliver writes the sample block in one request.
func (w *RegisterWriter) Deliver(_ context.Context, s sample.Sample) error {
	regs := status.EncodeSample(s)
	if err := w.cli.WriteRegisters(w.unitID, w.addr, regs[:]); err != nil {
		return fmt.Errorf("sink modbus: unit=%d addr=%d: %w", w.unitID, w.addr, err)
	}
	return nil
}
