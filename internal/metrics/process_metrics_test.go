package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewProcessMetrics(t *testing.T) {
	metrics := newProcessMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newProcessMetricsWithRegisterer should not return nil")
	}

	if metrics.processStarted == nil {
		t.Error("processStarted counter should not be nil")
	}

	if metrics.processConfirmed == nil {
		t.Error("processConfirmed counter should not be nil")
	}

	if metrics.processRejected == nil {
		t.Error("processRejected counter should not be nil")
	}

	if metrics.processExpired == nil {
		t.Error("processExpired counter should not be nil")
	}

	if metrics.processCompleted == nil {
		t.Error("processCompleted counter should not be nil")
	}

	if metrics.processDuration == nil {
		t.Error("processDuration histogram should not be nil")
	}

	if metrics.stepDuration == nil {
		t.Error("stepDuration histogram vec should not be nil")
	}

	if metrics.timelineEvents == nil {
		t.Error("timelineEvents counter should not be nil")
	}

	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}

	if metrics.activeProcesses == nil {
		t.Error("activeProcesses gauge should not be nil")
	}
}

func TestNewProcessMetrics_ReRegisterReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newProcessMetricsWithRegisterer(reg)
	second := newProcessMetricsWithRegisterer(reg)

	if first.processStarted != second.processStarted {
		t.Error("expected re-registration to return the existing counter")
	}
	if first.activeProcesses != second.activeProcesses {
		t.Error("expected re-registration to return the existing gauge")
	}
}

func TestRecordProcessStarted(t *testing.T) {
	reg := prometheus.NewRegistry()

	processStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_registration_started_total",
		Help: "Test counter",
	})
	activeProcesses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_active_registrations",
		Help: "Test gauge",
	})

	reg.MustRegister(processStarted, activeProcesses)

	metrics := &ProcessMetrics{
		processStarted:  processStarted,
		activeProcesses: activeProcesses,
	}

	metrics.RecordProcessStarted()

	metric := &dto.Metric{}
	if err := processStarted.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := activeProcesses.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected active registrations 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordProcessRejected(t *testing.T) {
	reg := prometheus.NewRegistry()

	processRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_registration_rejected_total",
		Help: "Test counter",
	})
	activeProcesses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_active_registrations_reject",
		Help: "Test gauge",
	})

	reg.MustRegister(processRejected, activeProcesses)

	metrics := &ProcessMetrics{
		processRejected: processRejected,
		activeProcesses: activeProcesses,
	}

	activeProcesses.Set(5)
	metrics.RecordProcessRejected()

	metric := &dto.Metric{}
	if err := processRejected.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	// Gauge не меняется: decrement делает RecordProcessInFlightFinished.
	gaugeMetric := &dto.Metric{}
	if err := activeProcesses.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 5.0 {
		t.Errorf("expected active registrations 5.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordProcessDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	processDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_registration_duration_seconds",
		Help:    "Test histogram",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(processDuration)

	metrics := &ProcessMetrics{
		processDuration: processDuration,
	}

	metrics.RecordProcessDuration(100 * time.Millisecond)
	metrics.RecordProcessDuration(500 * time.Millisecond)
	metrics.RecordProcessDuration(1 * time.Second)

	metric := &dto.Metric{}
	if err := processDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordStepDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_registration_step_duration_seconds",
		Help:    "Test histogram vec",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"step"})

	reg.MustRegister(stepDuration)

	metrics := &ProcessMetrics{
		stepDuration: stepDuration,
	}

	metrics.RecordStepDuration("reserve", 50*time.Millisecond)
	metrics.RecordStepDuration("confirm", 100*time.Millisecond)
	metrics.RecordStepDuration("commit", 25*time.Millisecond)

	reserveMetric := &dto.Metric{}
	observer := stepDuration.WithLabelValues("reserve")
	if err := observer.(prometheus.Histogram).Write(reserveMetric); err != nil {
		t.Fatalf("failed to write reserve metric: %v", err)
	}

	if reserveMetric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 sample for reserve, got %d", reserveMetric.Histogram.GetSampleCount())
	}
}

func TestRecordTimelineAndOutboxEvents(t *testing.T) {
	reg := prometheus.NewRegistry()

	timelineEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_timeline_events_total",
		Help: "Test counter",
	})
	outboxEvents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_outbox_events_total",
		Help: "Test counter",
	})

	reg.MustRegister(timelineEvents, outboxEvents)

	metrics := &ProcessMetrics{
		timelineEvents: timelineEvents,
		outboxEvents:   outboxEvents,
	}

	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordTimelineEvent()
	metrics.RecordOutboxEvent()
	metrics.RecordOutboxEvent()

	metric := &dto.Metric{}
	if err := timelineEvents.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 3.0 {
		t.Errorf("expected counter value 3.0, got %f", metric.Counter.GetValue())
	}

	outboxMetric := &dto.Metric{}
	if err := outboxEvents.Write(outboxMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if outboxMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", outboxMetric.Counter.GetValue())
	}
}

func TestProcessLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()

	activeProcesses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_registration_lifecycle_active",
		Help: "Test gauge",
	})
	processStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_registration_lifecycle_started",
		Help: "Test counter",
	})
	processCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_registration_lifecycle_completed",
		Help: "Test counter",
	})

	reg.MustRegister(activeProcesses, processStarted, processCompleted)

	metrics := &ProcessMetrics{
		activeProcesses:  activeProcesses,
		processStarted:   processStarted,
		processCompleted: processCompleted,
	}

	metrics.RecordProcessStarted() // active: 1
	metrics.RecordProcessStarted() // active: 2
	metrics.RecordProcessStarted() // active: 3

	metrics.RecordProcessCompleted()
	metrics.RecordProcessInFlightFinished() // active: 2
	metrics.RecordProcessCompleted()
	metrics.RecordProcessInFlightFinished() // active: 1

	gaugeMetric := &dto.Metric{}
	if err := activeProcesses.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1 active registration, got %f", gaugeMetric.Gauge.GetValue())
	}

	startedMetric := &dto.Metric{}
	if err := processStarted.Write(startedMetric); err != nil {
		t.Fatalf("failed to write started metric: %v", err)
	}
	if startedMetric.Counter.GetValue() != 3.0 {
		t.Errorf("expected 3 started registrations, got %f", startedMetric.Counter.GetValue())
	}

	completedMetric := &dto.Metric{}
	if err := processCompleted.Write(completedMetric); err != nil {
		t.Fatalf("failed to write completed metric: %v", err)
	}
	if completedMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 completed registrations, got %f", completedMetric.Counter.GetValue())
	}
}
