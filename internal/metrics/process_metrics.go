package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProcessMetrics содержит метрики регистрационного процесса.
type ProcessMetrics struct {
	// Счётчики переходов процесса
	processStarted   prometheus.Counter
	processConfirmed prometheus.Counter
	processRejected  prometheus.Counter
	processExpired   prometheus.Counter
	processCompleted prometheus.Counter

	// Гистограммы времени выполнения
	processDuration prometheus.Histogram
	stepDuration    *prometheus.HistogramVec

	// Счётчики событий timeline и outbox
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge для активных процессов
	activeProcesses prometheus.Gauge
}

// NewProcessMetrics создаёт новый экземпляр метрик регистрации.
func NewProcessMetrics() *ProcessMetrics {
	return newProcessMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newProcessMetricsWithRegisterer(registerer prometheus.Registerer) *ProcessMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ProcessMetrics{
		processStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_registration_started_total",
			Help: "Total number of registration processes started",
		}),
		processConfirmed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_registration_confirmed_total",
			Help: "Total number of seat reservations confirmed",
		}),
		processRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_registration_rejected_total",
			Help: "Total number of registration processes rejected",
		}),
		processExpired: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_registration_expired_total",
			Help: "Total number of registration processes expired",
		}),
		processCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_registration_completed_total",
			Help: "Total number of registration processes completed successfully",
		}),
		processDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "crs_registration_duration_seconds",
			Help:    "Duration of registration processes in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "crs_registration_step_duration_seconds",
			Help:    "Duration of individual registration steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crs_outbox_events_total",
			Help: "Total number of outbox events published",
		}),
		activeProcesses: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "crs_active_registrations",
			Help: "Number of currently active registration processes",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordProcessStarted увеличивает счётчик запущенных процессов.
func (m *ProcessMetrics) RecordProcessStarted() {
	m.processStarted.Inc()
	m.RecordProcessInFlightStarted()
}

// RecordReservationConfirmed увеличивает счётчик подтверждённых резервирований.
func (m *ProcessMetrics) RecordReservationConfirmed() {
	m.processConfirmed.Inc()
}

// RecordProcessRejected увеличивает счётчик отклонённых процессов.
func (m *ProcessMetrics) RecordProcessRejected() {
	m.processRejected.Inc()
}

// RecordProcessExpired увеличивает счётчик истёкших процессов.
func (m *ProcessMetrics) RecordProcessExpired() {
	m.processExpired.Inc()
}

// RecordProcessCompleted увеличивает счётчик завершённых процессов.
func (m *ProcessMetrics) RecordProcessCompleted() {
	m.processCompleted.Inc()
}

// RecordProcessInFlightStarted увеличивает количество активных процессов.
func (m *ProcessMetrics) RecordProcessInFlightStarted() {
	m.activeProcesses.Inc()
}

// RecordProcessInFlightFinished уменьшает количество активных процессов.
func (m *ProcessMetrics) RecordProcessInFlightFinished() {
	m.activeProcesses.Dec()
}

// RecordProcessDuration записывает полное время жизни процесса.
func (m *ProcessMetrics) RecordProcessDuration(duration time.Duration) {
	m.processDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага процесса.
func (m *ProcessMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *ProcessMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *ProcessMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
