// internal/sample/sample.go
package sample

// Flags is the classification bit set carried by every sample.
type Flags uint32

const (
	// FlagNew is set on every freshly generated sample.
	FlagNew Flags = 1 << 0

	// FlagThresholdExceeded is set when the temperature is strictly above the threshold.
	FlagThresholdExceeded Flags = 1 << 1
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

func (f Flags) String() string {
	switch {
	case f.Has(FlagNew | FlagThresholdExceeded):
		return "NEW|THRESHOLD"
	case f.Has(FlagNew):
		return "NEW"
	case f.Has(FlagThresholdExceeded):
		return "THRESHOLD"
	default:
		return "-"
	}
}

// Sample is one timestamped reading.
// Value type: copied into the buffer and out to readers, never mutated.
type Sample struct {
	// Timestamp is monotonic nanoseconds since the device epoch.
	Timestamp uint64
	// Temperature in milli-degrees.
	Temperature int32
	Flags       Flags
}

// Exceeded reports whether the sample crossed the alarm threshold.
func (s Sample) Exceeded() bool { return s.Flags.Has(FlagThresholdExceeded) }

// Classify returns the flags for a temperature against threshold.
// The comparison is strict: temp == threshold is not an excursion.
func Classify(temp, threshold int32) Flags {
	f := FlagNew
	if temp > threshold {
		f |= FlagThresholdExceeded
	}
	return f
}
