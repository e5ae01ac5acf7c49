// internal/sample/generator.go
package sample

import (
	"math"
	"math/rand/v2"
	"time"
)

// Source is the randomness the generator consumes.
// *rand.Rand satisfies it; tests substitute a fixed sequence.
type Source interface {
	Int64N(n int64) int64
}

// Params is the generator's view of the device configuration.
type Params struct {
	Baseline  int32 // milli-degrees
	Variation int32 // milli-degrees, inclusive bound
	Threshold int32 // milli-degrees
}

// Generator produces readings around a baseline.
// Not safe for concurrent use: the scheduler is its only caller.
type Generator struct {
	params Params
	src    Source
}

// NewGenerator returns a generator drawing from src.
func NewGenerator(p Params, src Source) *Generator {
	if p.Variation < 0 {
		p.Variation = -p.Variation
	}
	return &Generator{params: p, src: src}
}

// NewSource returns a PCG source. seed == 0 draws the seed from the runtime.
func NewSource(seed uint64) Source {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate draws one offset in [-variation, +variation] and classifies the result.
// ts is the sample timestamp relative to the device epoch.
func (g *Generator) Generate(ts time.Duration) Sample {
	v := int64(g.params.Variation)
	t := int64(g.params.Baseline)
	if v > 0 {
		t += g.src.Int64N(2*v+1) - v
	}
	temp := clamp32(t)
	return Sample{
		Timestamp:   uint64(ts),
		Temperature: temp,
		Flags:       Classify(temp, g.params.Threshold),
	}
}

// clamp32 saturates t to the int32 range.
func clamp32(t int64) int32 {
	switch {
	case t > math.MaxInt32:
		return math.MaxInt32
	case t < math.MinInt32:
		return math.MinInt32
	}
	return int32(t)
}
