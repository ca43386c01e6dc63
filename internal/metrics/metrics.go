// Package metrics provides Prometheus metrics for Docere.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Docere.
type Metrics struct {
	// Transform pipeline metrics
	TransformsTotal   *prometheus.CounterVec
	TransformDuration *prometheus.HistogramVec
	StageFailures     *prometheus.CounterVec

	// Session pool metrics
	SessionsActive prometheus.Gauge
	SessionInits   *prometheus.CounterVec

	// Config cache metrics
	ConfigLoads *prometheus.CounterVec

	// Indexing metrics
	IndexedDocuments *prometheus.CounterVec
	SchemaInferences *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// Use prometheus.DefaultRegisterer to expose them on the default handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{}

	m.TransformsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docere_transforms_total",
			Help: "Total number of document transforms",
		},
		[]string{"project", "status"},
	)

	m.TransformDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docere_transform_duration_seconds",
			Help:    "Duration of document transforms in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"project"},
	)

	m.StageFailures = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docere_stage_failures_total",
			Help: "Total number of pipeline stage failures",
		},
		[]string{"project", "stage"},
	)

	m.SessionsActive = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "docere_sessions_active",
			Help: "Number of live transform sessions",
		},
	)

	m.SessionInits = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docere_session_inits_total",
			Help: "Total number of session initialisations",
		},
		[]string{"runtime", "status"},
	)

	m.ConfigLoads = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docere_config_loads_total",
			Help: "Total number of project configuration loads",
		},
		[]string{"status"},
	)

	m.IndexedDocuments = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docere_indexed_documents_total",
			Help: "Total number of documents sent to the index sink",
		},
		[]string{"project", "status"},
	)

	m.SchemaInferences = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docere_schema_inferences_total",
			Help: "Total number of schema inferences",
		},
		[]string{"project", "status"},
	)

	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveTransform records one transform call.
func (m *Metrics) ObserveTransform(project string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.TransformsTotal.WithLabelValues(project, status(err)).Inc()
	m.TransformDuration.WithLabelValues(project).Observe(d.Seconds())
}

// StageFailed records a failed pipeline stage.
func (m *Metrics) StageFailed(project, stage string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(project, stage).Inc()
}

// SessionInit records a session initialisation attempt.
func (m *Metrics) SessionInit(runtime string, err error) {
	if m == nil {
		return
	}
	m.SessionInits.WithLabelValues(runtime, status(err)).Inc()
	if err == nil {
		m.SessionsActive.Inc()
	}
}

// SessionsClosed records n closed sessions.
func (m *Metrics) SessionsClosed(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Sub(float64(n))
}

// ConfigLoad records a configuration load.
func (m *Metrics) ConfigLoad(err error) {
	if m == nil {
		return
	}
	m.ConfigLoads.WithLabelValues(status(err)).Inc()
}

// DocumentIndexed records one upsert attempt.
func (m *Metrics) DocumentIndexed(project string, err error) {
	if m == nil {
		return
	}
	m.IndexedDocuments.WithLabelValues(project, status(err)).Inc()
}

// SchemaInferred records one schema inference.
func (m *Metrics) SchemaInferred(project string, err error) {
	if m == nil {
		return
	}
	m.SchemaInferences.WithLabelValues(project, status(err)).Inc()
}
