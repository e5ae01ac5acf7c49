// internal/metrics/prometheus.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SamplesGenerated counts samples pushed by the scheduler.
	SamplesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtemp_samples_generated_total",
			Help: "Total number of samples generated",
		},
		[]string{"device"},
	)

	// SamplesDropped counts samples overwritten before any reader popped them.
	SamplesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtemp_samples_dropped_total",
			Help: "Total number of unread samples overwritten on a full buffer",
		},
		[]string{"device"},
	)

	// ThresholdExceeded counts generated samples above the alarm threshold.
	ThresholdExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtemp_threshold_exceeded_total",
			Help: "Total number of samples above the threshold",
		},
		[]string{"device"},
	)

	// ReadOutcomes counts session reads by outcome.
	ReadOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtemp_reads_total",
			Help: "Total number of session reads by outcome",
		},
		[]string{"device", "outcome"},
	)

	// BufferDepth is the number of queued samples after the last push or pop.
	BufferDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simtemp_buffer_depth",
			Help: "Current number of samples queued in the ring buffer",
		},
		[]string{"device"},
	)

	// OpenSessions is the number of open device sessions.
	OpenSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simtemp_open_sessions",
			Help: "Number of currently open device sessions",
		},
		[]string{"device"},
	)

	// TickLateness is how far after its deadline each firing ran.
	TickLateness = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simtemp_tick_lateness_seconds",
			Help:    "Scheduler firing delay relative to its deadline",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
		[]string{"device"},
	)

	// SinkOperations counts deliveries to each sink.
	SinkOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simtemp_sink_operations_total",
			Help: "Total number of sink deliveries",
		},
		[]string{"sink", "status"},
	)
)

// Read outcome label values.
const (
	OutcomeSample      = "sample"
	OutcomeWouldBlock  = "would_block"
	OutcomeInterrupted = "interrupted"
	OutcomeDetached    = "detached"
	OutcomeTooSmall    = "too_small"
)

// Device is the set of collectors bound to one device name.
// Binding once at attach keeps label lookups off the tick path.
type Device struct {
	Generated   prometheus.Counter
	Dropped     prometheus.Counter
	Exceeded    prometheus.Counter
	Depth       prometheus.Gauge
	Sessions    prometheus.Gauge
	Lateness    prometheus.Observer
	Sample      prometheus.Counter
	WouldBlock  prometheus.Counter
	Interrupted prometheus.Counter
	Detached    prometheus.Counter
	TooSmall    prometheus.Counter
}

// ForDevice binds all device collectors to name.
func ForDevice(name string) *Device {
	return &Device{
		Generated:   SamplesGenerated.WithLabelValues(name),
		Dropped:     SamplesDropped.WithLabelValues(name),
		Exceeded:    ThresholdExceeded.WithLabelValues(name),
		Depth:       BufferDepth.WithLabelValues(name),
		Sessions:    OpenSessions.WithLabelValues(name),
		Lateness:    TickLateness.WithLabelValues(name),
		Sample:      ReadOutcomes.WithLabelValues(name, OutcomeSample),
		WouldBlock:  ReadOutcomes.WithLabelValues(name, OutcomeWouldBlock),
		Interrupted: ReadOutcomes.WithLabelValues(name, OutcomeInterrupted),
		Detached:    ReadOutcomes.WithLabelValues(name, OutcomeDetached),
		TooSmall:    ReadOutcomes.WithLabelValues(name, OutcomeTooSmall),
	}
}
