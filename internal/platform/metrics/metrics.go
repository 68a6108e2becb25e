package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Services accept
// a possibly-nil *Metrics so unit tests can skip registration entirely.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec

	CandidatesRegistered  prometheus.Counter
	DuplicateScans        prometheus.Counter
	DuplicateMatches      prometheus.Counter
	DuplicateScanDuration prometheus.Histogram

	ApplicationsSubmitted prometheus.Counter
	StageMoves            *prometheus.CounterVec
	PostingTransitions    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hireline_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		CandidatesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hireline_candidates_registered_total",
			Help: "Total number of candidates registered",
		}),
		DuplicateScans: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hireline_duplicate_scans_total",
			Help: "Total number of duplicate scans executed",
		}),
		DuplicateMatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hireline_duplicate_matches_total",
			Help: "Total number of scans that found at least one probable duplicate",
		}),
		DuplicateScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hireline_duplicate_scan_duration_seconds",
			Help:    "Wall-clock duration of a duplicate scan, cached or full",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hireline_applications_submitted_total",
			Help: "Total number of applications submitted",
		}),
		StageMoves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_stage_moves_total",
			Help: "Application stage transitions by change kind",
		}, []string{"kind"}),
		PostingTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_posting_transitions_total",
			Help: "Posting lifecycle transitions by target status",
		}, []string{"status"}),
	}
}

// ObserveRequest records one HTTP request. Nil-safe.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// IncCandidatesRegistered increments the candidate registration counter. Nil-safe.
func (m *Metrics) IncCandidatesRegistered() {
	if m == nil {
		return
	}
	m.CandidatesRegistered.Inc()
}

// ObserveDuplicateScan records one duplicate scan and whether it matched. Nil-safe.
func (m *Metrics) ObserveDuplicateScan(d time.Duration, matched bool) {
	if m == nil {
		return
	}
	m.DuplicateScans.Inc()
	m.DuplicateScanDuration.Observe(d.Seconds())
	if matched {
		m.DuplicateMatches.Inc()
	}
}

// IncApplicationsSubmitted increments the application submission counter. Nil-safe.
func (m *Metrics) IncApplicationsSubmitted() {
	if m == nil {
		return
	}
	m.ApplicationsSubmitted.Inc()
}

// IncStageMove records one stage transition of the given change kind. Nil-safe.
func (m *Metrics) IncStageMove(kind string) {
	if m == nil {
		return
	}
	m.StageMoves.WithLabelValues(kind).Inc()
}

// IncPostingTransition records one posting lifecycle transition. Nil-safe.
func (m *Metrics) IncPostingTransition(status string) {
	if m == nil {
		return
	}
	m.PostingTransitions.WithLabelValues(status).Inc()
}
