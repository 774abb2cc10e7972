package metrics

import "github.com/prometheus/client_golang/prometheus"

// LifecycleMetrics counts assignment lifecycle and deletion outcomes and
// tracks the latest reconciliation result.
type LifecycleMetrics struct {
	operations *prometheus.CounterVec
	issues     *prometheus.GaugeVec
}

// NewLifecycleMetrics registers the lifecycle collectors. A nil registerer
// yields a no-op recorder.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lifecycle",
		Name:      "operations_total",
		Help:      "Lifecycle operations by outcome.",
	}, []string{"operation", "outcome"})
	issues := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconcile",
		Name:      "issues",
		Help:      "Inconsistencies found by the last reconciliation pass.",
	}, []string{"kind"})
	reg.MustRegister(operations, issues)
	return &LifecycleMetrics{operations: operations, issues: issues}
}

// Observe records one operation outcome.
func (m *LifecycleMetrics) Observe(operation, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// SetIssues replaces the gauge values with counts keyed by issue kind.
func (m *LifecycleMetrics) SetIssues(counts map[string]int) {
	if m == nil || m.issues == nil {
		return
	}
	m.issues.Reset()
	for kind, n := range counts {
		m.issues.WithLabelValues(kind).Set(float64(n))
	}
}
