package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "syllabussense_stage_duration_seconds",
			Help:    "Workflow stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
		},
		[]string{"stage"},
	)

	degradeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "syllabussense_degrade_events_total",
			Help: "Stage failures degraded to empty defaults",
		},
		[]string{"stage", "kind"}, // kind: "schema", "decode", "transport"
	)

	questionsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syllabussense_questions_saved_total",
			Help: "Questions persisted to the output sink",
		},
	)

	saveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syllabussense_save_failures_total",
			Help: "Sink save operations that failed",
		},
	)

	topicsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syllabussense_topics_processed_total",
			Help: "Topics run through the workflow graph",
		},
	)

	stallWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "syllabussense_stall_warnings_total",
			Help: "Loop-guard activations forcing a topic to end",
		},
	)
)

// Collector provides convenience methods for recording metrics.
type Collector struct{}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordStage records a stage execution duration.
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordDegrade counts a degrade-to-default event.
func (c *Collector) RecordDegrade(stage, kind string) {
	degradeEvents.WithLabelValues(stage, kind).Inc()
}

// RecordSave counts a sink save outcome.
func (c *Collector) RecordSave(count int, err error) {
	if err != nil {
		saveFailures.Inc()
		return
	}
	questionsSaved.Add(float64(count))
}

// RecordTopic counts a topic run to completion.
func (c *Collector) RecordTopic() {
	topicsProcessed.Inc()
}

// RecordStall counts a loop-guard activation.
func (c *Collector) RecordStall() {
	stallWarnings.Inc()
}
