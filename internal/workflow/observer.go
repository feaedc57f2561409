package workflow

import (
	"log/slog"
	"time"

	"github.com/tmalunga/syllabussense/internal/metrics"
)

// Observer receives workflow lifecycle events. Implementations must be cheap;
// they run inline with stage execution.
type Observer interface {
	OnStageStart(stage string)
	OnStageEnd(stage string, duration time.Duration, err error)
	OnDegrade(stage, kind string)
	OnSave(topic string, count int, err error)
	OnDecision(decision string)
	OnStall(topic string, position int)
	OnTopicDone(topic string, questions int)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(string)                     {}
func (NoopObserver) OnStageEnd(string, time.Duration, error) {}
func (NoopObserver) OnDegrade(string, string)                {}
func (NoopObserver) OnSave(string, int, error)               {}
func (NoopObserver) OnDecision(string)                       {}
func (NoopObserver) OnStall(string, int)                     {}
func (NoopObserver) OnTopicDone(string, int)                 {}

// LogObserver traces events to a structured logger at debug level. Warnings
// for degrades and stalls come from the workflow itself, so the observer
// stays at trace granularity.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) OnStageStart(stage string) {
	o.Logger.Debug("stage start", "stage", stage)
}

func (o LogObserver) OnStageEnd(stage string, duration time.Duration, err error) {
	if err != nil {
		o.Logger.Debug("stage end", "stage", stage, "duration", duration, "error", err)
		return
	}
	o.Logger.Debug("stage end", "stage", stage, "duration", duration)
}

func (o LogObserver) OnDegrade(stage, kind string) {
	o.Logger.Debug("stage degraded", "stage", stage, "kind", kind)
}

func (o LogObserver) OnSave(topic string, count int, err error) {
	o.Logger.Debug("save observed", "topic", topic, "count", count, "error", err)
}

func (o LogObserver) OnDecision(decision string) {
	o.Logger.Debug("routing decision", "decision", decision)
}

func (o LogObserver) OnStall(topic string, position int) {
	o.Logger.Debug("stall observed", "topic", topic, "position", position)
}

func (o LogObserver) OnTopicDone(topic string, questions int) {
	o.Logger.Debug("topic done", "topic", topic, "questions", questions)
}

// MetricsObserver records events into Prometheus collectors.
type MetricsObserver struct {
	Collector *metrics.Collector
}

func (o MetricsObserver) OnStageStart(string) {}

func (o MetricsObserver) OnStageEnd(stage string, duration time.Duration, _ error) {
	o.Collector.RecordStage(stage, duration)
}

func (o MetricsObserver) OnDegrade(stage, kind string) {
	o.Collector.RecordDegrade(stage, kind)
}

func (o MetricsObserver) OnSave(_ string, count int, err error) {
	o.Collector.RecordSave(count, err)
}

func (o MetricsObserver) OnDecision(string) {}

func (o MetricsObserver) OnStall(string, int) {
	o.Collector.RecordStall()
}

func (o MetricsObserver) OnTopicDone(string, int) {
	o.Collector.RecordTopic()
}

// CompositeObserver fans events out to multiple observers in order.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver combines observers into one.
func NewCompositeObserver(observers ...Observer) *CompositeObserver {
	return &CompositeObserver{observers: observers}
}

func (c *CompositeObserver) OnStageStart(stage string) {
	for _, o := range c.observers {
		o.OnStageStart(stage)
	}
}

func (c *CompositeObserver) OnStageEnd(stage string, duration time.Duration, err error) {
	for _, o := range c.observers {
		o.OnStageEnd(stage, duration, err)
	}
}

func (c *CompositeObserver) OnDegrade(stage, kind string) {
	for _, o := range c.observers {
		o.OnDegrade(stage, kind)
	}
}

func (c *CompositeObserver) OnSave(topic string, count int, err error) {
	for _, o := range c.observers {
		o.OnSave(topic, count, err)
	}
}

func (c *CompositeObserver) OnDecision(decision string) {
	for _, o := range c.observers {
		o.OnDecision(decision)
	}
}

func (c *CompositeObserver) OnStall(topic string, position int) {
	for _, o := range c.observers {
		o.OnStall(topic, position)
	}
}

func (c *CompositeObserver) OnTopicDone(topic string, questions int) {
	for _, o := range c.observers {
		o.OnTopicDone(topic, questions)
	}
}
