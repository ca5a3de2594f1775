// Package metrics holds the Prometheus collectors of the conversion engine.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	ConversionDuration *prometheus.HistogramVec
	ConversionsTotal   *prometheus.CounterVec
	ValidationErrors   *prometheus.CounterVec
	RawFallbacks       *prometheus.CounterVec

	PipelineQueueLength prometheus.Gauge

	// System metrics
	SystemMemoryUsage prometheus.Gauge
	SystemGoroutines  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adfconv_conversion_duration_seconds",
				Help:    "Time spent converting a document",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"direction"},
		),
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfconv_conversions_total",
				Help: "Total number of conversions",
			},
			[]string{"direction", "status"},
		),
		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfconv_validation_errors_total",
				Help: "Total number of documents rejected by validation",
			},
			[]string{"code"},
		),
		RawFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adfconv_raw_fallbacks_total",
				Help: "Number of raw passthrough nodes in converted documents",
			},
			[]string{"direction"},
		),
		PipelineQueueLength: factory.NewGauge(prometheus.GaugeOpts{
			Name: "adfconv_pipeline_queue_length",
			Help: "Number of documents waiting to be converted",
		}),
		SystemMemoryUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "adfconv_system_memory_bytes",
			Help: "Current system memory usage",
		}),
		SystemGoroutines: factory.NewGauge(prometheus.GaugeOpts{
			Name: "adfconv_system_goroutines",
			Help: "Number of goroutines",
		}),
	}
}

// Observe starts timing a conversion. The returned function records its
// duration and outcome.
func (m *Metrics) Observe(direction string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	timer := prometheus.NewTimer(m.ConversionDuration.WithLabelValues(direction))
	return func(err error) {
		timer.ObserveDuration()
		status := "success"
		if err != nil {
			status = "error"
		}
		m.ConversionsTotal.WithLabelValues(direction, status).Inc()
	}
}

// ValidationFailed counts a rejected document.
func (m *Metrics) ValidationFailed(code string) {
	if m == nil {
		return
	}
	m.ValidationErrors.WithLabelValues(code).Inc()
}

// RawNodes adds n raw passthrough nodes seen in a conversion.
func (m *Metrics) RawNodes(direction string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RawFallbacks.WithLabelValues(direction).Add(float64(n))
}

// QueueLength sets the pipeline backlog.
func (m *Metrics) QueueLength(n int) {
	if m == nil {
		return
	}
	m.PipelineQueueLength.Set(float64(n))
}

// UpdateSystemMetrics updates system-level metrics
func (m *Metrics) UpdateSystemMetrics() {
	if m == nil {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.SystemMemoryUsage.Set(float64(ms.Alloc))
	m.SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
