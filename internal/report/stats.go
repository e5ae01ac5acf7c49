// internal/report/stats.go
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/tamzrod/simtemp/internal/sample"
)

// Latencies above this are clamped into the top bucket.
const maxTrackedLatency = int64(time.Minute / time.Microsecond)

// Stats accumulates a running summary of consumed samples.
// Not safe for concurrent use.
type Stats struct {
	count    uint64
	exceeded uint64
	min, max int32
	sum      int64

	latency *hdrhistogram.Histogram // microseconds
}

func NewStats() *Stats {
	return &Stats{latency: hdrhistogram.New(1, maxTrackedLatency, 3)}
}

// Add records s and how long it sat between generation and consumption.
func (st *Stats) Add(s sample.Sample, latency time.Duration) {
	if st.count == 0 || s.Temperature < st.min {
		st.min = s.Temperature
	}
	if st.count == 0 || s.Temperature > st.max {
		st.max = s.Temperature
	}
	st.count++
	st.sum += int64(s.Temperature)
	if s.Exceeded() {
		st.exceeded++
	}

	us := latency.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxTrackedLatency {
		us = maxTrackedLatency
	}
	_ = st.latency.RecordValue(us)
}

// Summary is a snapshot of Stats.
type Summary struct {
	Count    uint64
	Exceeded uint64
	Min      int32
	Max      int32
	Avg      int32

	LatencyP50 time.Duration
	LatencyP99 time.Duration
	LatencyMax time.Duration
}

func (st *Stats) Summary() Summary {
	if st.count == 0 {
		return Summary{}
	}
	return Summary{
		Count:      st.count,
		Exceeded:   st.exceeded,
		Min:        st.min,
		Max:        st.max,
		Avg:        int32(st.sum / int64(st.count)),
		LatencyP50: time.Duration(st.latency.ValueAtQuantile(50)) * time.Microsecond,
		LatencyP99: time.Duration(st.latency.ValueAtQuantile(99)) * time.Microsecond,
		LatencyMax: time.Duration(st.latency.Max()) * time.Microsecond,
	}
}

// WriteSummary prints the summary block shown at the end of a read.
func WriteSummary(w io.Writer, s Summary) error {
	if s.Count == 0 {
		_, err := fmt.Fprintln(w, "No samples collected.")
		return err
	}
	_, err := fmt.Fprintf(w,
		"Total samples:      %d\n"+
			"Min temperature:    %s\n"+
			"Max temperature:    %s\n"+
			"Avg temperature:    %s\n"+
			"Threshold exceeded: %d\n"+
			"Latency p50/p99/max: %s / %s / %s\n",
		s.Count,
		Celsius(s.Min), Celsius(s.Max), Celsius(s.Avg),
		s.Exceeded,
		s.LatencyP50, s.LatencyP99, s.LatencyMax,
	)
	return err
}

// Celsius renders milli-degrees as "d.ddd°C".
func Celsius(mc int32) string {
	sign := ""
	v := int64(mc)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d°C", sign, v/1000, v%1000)
}
