// internal/sink/status_writer.go
package sink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/simtemp/internal/status"
)

// deviceStatusWriter is the concrete status block writer.
type deviceStatusWriter struct {
	plan StatusPlan
	cli  registerClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// NewDeviceStatusWriter builds a status writer for plan.
func NewDeviceStatusWriter(plan StatusPlan, cli registerClient) *deviceStatusWriter {
	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: status.EncodeDeviceName(plan.DeviceName),
	}
}

// WriteStatus delivers a device status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.cli == nil {
		return errors.New("status writer: disabled")
	}

	baseAddr := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(unitID, baseAddr, sw.fullBlockRegs(s)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	write := func(slot uint16, regs []uint16, label string) bool {
		if err := sw.cli.WriteRegisters(unitID, baseAddr+slot, regs); err != nil {
			errs = append(errs, fmt.Sprintf("%s write failed: %v", label, err))
			return false
		}
		return true
	}

	// Slot 0 - health_code
	if sw.last.Health != s.Health {
		if write(status.SlotHealthCode, []uint16{s.Health}, "slot0 health") {
			sw.last.Health = s.Health
		}
	}

	// Slot 1 - last_flags
	if sw.last.LastFlags != s.LastFlags {
		if write(status.SlotLastFlags, []uint16{s.LastFlags}, "slot1 flags") {
			sw.last.LastFlags = s.LastFlags
		}
	}

	// Slot 2 - seconds_stale
	if sw.last.SecondsStale != s.SecondsStale {
		if write(status.SlotSecondsStale, []uint16{s.SecondsStale}, "slot2 seconds") {
			sw.last.SecondsStale = s.SecondsStale
		}
	}

	// Slots 3-4 - last temperature, written as a pair
	if sw.last.LastTemperature != s.LastTemperature {
		t := uint32(s.LastTemperature)
		if write(status.SlotLastTempHi, []uint16{uint16(t >> 16), uint16(t)}, "slot3-4 temperature") {
			sw.last.LastTemperature = s.LastTemperature
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Device name always lives at the end of the block
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

	return regs
}
