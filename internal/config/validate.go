// internal/config/validate.go
package config

import (
	"fmt"
	"math"

	"github.com/tamzrod/simtemp/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only. Unset values are checked as the
// defaults Normalize will give them.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device

	for i := 0; i < len(d.Name); i++ {
		if d.Name[i] > 0x7F {
			return fmt.Errorf("device.name %q must contain ASCII characters only", d.Name)
		}
	}
	if d.SamplingMs < 0 {
		return fmt.Errorf("device.sampling_ms must be > 0, got %d", d.SamplingMs)
	}
	if v := d.Variation(); v < 0 {
		return fmt.Errorf("device.variation_mc must be >= 0, got %d", v)
	}
	if c := d.BufferCapacity; c != 0 && (c < 2 || c&(c-1) != 0) {
		return fmt.Errorf("device.buffer_capacity must be a power of two >= 2, got %d", c)
	}

	// baseline +/- variation must stay inside int32, defaults included
	base, vari := int64(d.Baseline()), int64(d.Variation())
	if base+vari > math.MaxInt32 || base-vari < math.MinInt32 {
		return fmt.Errorf(
			"device: baseline_mc %d +/- variation_mc %d overflows int32",
			base,
			vari,
		)
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	if m := cfg.Sinks.Modbus; m != nil {
		if m.Endpoint == "" {
			return fmt.Errorf("sinks.modbus.endpoint required")
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("sinks.modbus.timeout_ms must be >= 0, got %d", m.TimeoutMs)
		}

		// data block and status block must not overlap when they share a unit
		if m.StatusSlot != nil {
			statusUnit := m.UnitID
			if m.StatusUnitID != nil {
				statusUnit = *m.StatusUnitID
			}

			dataStart := uint32(m.Address)
			dataEnd := dataStart + status.SampleRegisters - 1
			stStart := uint32(*m.StatusSlot) * status.SlotsPerDevice
			stEnd := stStart + status.SlotsPerDevice - 1

			if stEnd > 0xFFFF {
				return fmt.Errorf("sinks.modbus.status_slot %d out of register range", *m.StatusSlot)
			}

			// overlap check (inclusive)
			if statusUnit == m.UnitID && !(dataEnd < stStart || dataStart > stEnd) {
				return fmt.Errorf(
					"sinks.modbus: sample block %d-%d overlaps status block %d-%d on unit %d",
					dataStart,
					dataEnd,
					stStart,
					stEnd,
					m.UnitID,
				)
			}
		}
		if uint32(m.Address)+status.SampleRegisters-1 > 0xFFFF {
			return fmt.Errorf("sinks.modbus.address %d out of register range", m.Address)
		}
	}

	if r := cfg.Sinks.Redis; r != nil {
		if r.Addr == "" {
			return fmt.Errorf("sinks.redis.addr required")
		}
		if r.DB < 0 {
			return fmt.Errorf("sinks.redis.db must be >= 0, got %d", r.DB)
		}
	}

	if i := cfg.Sinks.Ingest; i != nil {
		if i.Endpoint == "" {
			return fmt.Errorf("sinks.ingest.endpoint required")
		}
		if i.TimeoutMs < 0 {
			return fmt.Errorf("sinks.ingest.timeout_ms must be >= 0, got %d", i.TimeoutMs)
		}
	}

	return nil
}
