package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	admissions *prometheus.CounterVec
	cacheHits  *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	synthesis  *prometheus.CounterVec
	evictions  *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

// New creates a Prometheus recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registering on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		admissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_admission_decisions_total",
				Help: "Admission decisions by result (allowed, denied, fail_open, unavailable)",
			},
			[]string{"result"},
		),
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_run_cache_lookups_total",
				Help: "Fresh-run lookups by outcome",
			},
			[]string{"hit"},
		),
		stages: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		synthesis: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_synthesis_outcomes_total",
				Help: "Report synthesis outcomes by status",
			},
			[]string{"status"},
		),
		evictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_run_evictions_total",
				Help: "Stale run evictions by result",
			},
			[]string{"result"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

func (r *Recorder) RecordAdmission(result string) {
	r.admissions.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	r.cacheHits.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

// RecordStage records stage latency in seconds.
func (r *Recorder) RecordStage(stage string, seconds float64) {
	r.stages.WithLabelValues(stage).Observe(seconds)
}

func (r *Recorder) RecordSynthesis(status string) {
	r.synthesis.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordEviction(result string) {
	r.evictions.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordAdmission(string) {}
func (Nop) RecordCacheLookup(bool) {}
func (Nop) RecordStage(string, float64) {}
func (Nop) RecordSynthesis(string) {}
func (Nop) RecordEviction(string) {}
func (Nop) RecordError(string) {}
