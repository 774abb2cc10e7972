package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestLifecycleMetricsCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)
	m.Observe("assign", OutcomeSuccess)
	m.Observe("assign", OutcomeSuccess)
	m.Observe("assign", OutcomeRejected)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "assetdesk_lifecycle_operations_total", map[string]string{"operation": "assign", "outcome": OutcomeSuccess})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 successful assigns, got %f", got)
	}
}

func TestLifecycleMetricsSetIssuesResetsPreviousKinds(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)
	m.SetIssues(map[string]int{"assigned_to_mismatch": 2, "multiple_active_assignments": 1})
	m.SetIssues(map[string]int{"assigned_to_mismatch": 1})

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "assetdesk_reconcile_issues")
	if mf == nil {
		t.Fatal("expected reconcile gauge")
	}
	if len(mf.GetMetric()) != 1 {
		t.Fatalf("expected stale kinds to be dropped, got %d series", len(mf.GetMetric()))
	}
	if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 1 {
		t.Fatalf("expected gauge 1, got %f", v)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/assets", 200, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if _, err := fetchHistogramSum(mfs, "assetdesk_http_request_duration_seconds", "route", "unmatched"); err != nil {
		t.Fatalf("expected unmatched route series: %v", err)
	}
}
