package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Manager manages all Prometheus metrics for pipeline runs. Gauges describe
// the last run; counters accumulate across runs in one process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Reconciliation
	trades            prometheus.Gauge
	tradesConfirmed   prometheus.Gauge
	tradesNeedsReview prometheus.Gauge
	tradesInjected    prometheus.Gauge
	duplicates        prometheus.Gauge

	// Provenance and grading
	picks      *prometheus.GaugeVec
	sideGrades *prometheus.GaugeVec

	// Run health
	issues        *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dynasty",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: m.customLabels,
		})
	}
	gaugeVec := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: m.customLabels,
		}, labels)
	}

	m.trades = gauge("trades", "Canonical trades produced by the last run")
	m.tradesConfirmed = gauge("trades_confirmed", "Canonical trades corroborated by the bundle log")
	m.tradesNeedsReview = gauge("trades_needs_review", "Canonical trades flagged for manual review")
	m.tradesInjected = gauge("trades_injected", "Trades added from unmatched bundle groups")
	m.duplicates = gauge("duplicates_dropped", "Duplicate trades removed by canonical key")

	m.picks = gaugeVec("picks", "Pick ledger entries by status", "status")
	m.sideGrades = gaugeVec("side_grades", "Combined side grades by letter", "grade")
	m.issues = gaugeVec("issues", "Run report issues by stage and kind", "stage", "kind")

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Stage wall time in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"stage"})

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Pipeline runs by result",
		ConstLabels: m.customLabels,
	}, []string{"result"})

	m.lastSuccess = gauge("last_success_timestamp_seconds", "Unix time of the last successful run")
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Reconciliation holds the counts reported by the reconcile stage.
type Reconciliation struct {
	Trades      int
	Confirmed   int
	NeedsReview int
	Injected    int
	Duplicates  int
}

// UpdateReconciliation sets the reconcile gauges.
func (m *Manager) UpdateReconciliation(r Reconciliation) {
	if !m.enabled {
		return
	}
	m.trades.Set(float64(r.Trades))
	m.tradesConfirmed.Set(float64(r.Confirmed))
	m.tradesNeedsReview.Set(float64(r.NeedsReview))
	m.tradesInjected.Set(float64(r.Injected))
	m.duplicates.Set(float64(r.Duplicates))
}

// UpdatePicks replaces the per-status pick gauges.
func (m *Manager) UpdatePicks(byStatus map[string]int) {
	if !m.enabled {
		return
	}
	m.picks.Reset()
	for status, n := range byStatus {
		m.picks.WithLabelValues(status).Set(float64(n))
	}
}

// UpdateGrades replaces the per-letter side grade gauges.
func (m *Manager) UpdateGrades(byGrade map[string]int) {
	if !m.enabled {
		return
	}
	m.sideGrades.Reset()
	for grade, n := range byGrade {
		m.sideGrades.WithLabelValues(grade).Set(float64(n))
	}
}

// UpdateIssues replaces the issue gauges. Keys are stage then kind.
func (m *Manager) UpdateIssues(counts map[string]map[string]int) {
	if !m.enabled {
		return
	}
	m.issues.Reset()
	for stage, kinds := range counts {
		for kind, n := range kinds {
			m.issues.WithLabelValues(stage, kind).Set(float64(n))
		}
	}
}

// RecordStageDuration observes one stage's wall time.
func (m *Manager) RecordStageDuration(stage string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(float64(d) / float64(time.Millisecond))
}

// RecordRun counts a finished run and stamps the success time.
func (m *Manager) RecordRun(result string, at time.Time) {
	if !m.enabled {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.lastSuccess.Set(float64(at.Unix()))
	}
}

// WriteTextfile writes every metric in the text exposition format for the
// node exporter textfile collector. The write is atomic.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteTextfile, path, err)
	}
	return nil
}

// Global helpers.

// UpdateReconciliation sets the reconcile gauges.
func UpdateReconciliation(r Reconciliation) { globalManager.UpdateReconciliation(r) }

// UpdatePicks replaces the per-status pick gauges.
func UpdatePicks(byStatus map[string]int) { globalManager.UpdatePicks(byStatus) }

// UpdateGrades replaces the per-letter side grade gauges.
func UpdateGrades(byGrade map[string]int) { globalManager.UpdateGrades(byGrade) }

// UpdateIssues replaces the issue gauges.
func UpdateIssues(counts map[string]map[string]int) { globalManager.UpdateIssues(counts) }

// RecordStageDuration observes one stage's wall time.
func RecordStageDuration(stage string, d time.Duration) { globalManager.RecordStageDuration(stage, d) }

// RecordRun counts a finished run.
func RecordRun(result string, at time.Time) { globalManager.RecordRun(result, at) }

// WriteTextfile writes the global registry to path.
func WriteTextfile(path string) error { return globalManager.WriteTextfile(path) }

// Global returns the process-wide manager.
func Global() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
