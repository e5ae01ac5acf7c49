// internal/status/encode.go
package status

import "github.com/tamzrod/simtemp/internal/sample"

// Encode converts a Snapshot into the live part of a status block.
// Layout is protocol-locked. The name slots are left zero.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastFlags] = s.LastFlags
	regs[SlotSecondsStale] = s.SecondsStale
	regs[SlotLastTempHi] = uint16(uint32(s.LastTemperature) >> 16)
	regs[SlotLastTempLo] = uint16(uint32(s.LastTemperature))

	return regs
}

// EncodeSample packs a sample into SampleRegisters registers, high word first.
func EncodeSample(s sample.Sample) [SampleRegisters]uint16 {
	var r [SampleRegisters]uint16

	r[0] = uint16(s.Timestamp >> 48)
	r[1] = uint16(s.Timestamp >> 32)
	r[2] = uint16(s.Timestamp >> 16)
	r[3] = uint16(s.Timestamp)

	t := uint32(s.Temperature)
	r[4] = uint16(t >> 16)
	r[5] = uint16(t)

	f := uint32(s.Flags)
	r[6] = uint16(f >> 16)
	r[7] = uint16(f)

	return r
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
