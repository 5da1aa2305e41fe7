package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCacheMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCacheMetrics(reg)
	metrics.ObserveRequest("list", CacheHit)
	metrics.ObserveRequest("list", CacheHit)
	metrics.ObserveRequest("detail", CacheMiss)
	metrics.IncInvalidation("status")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "stashkeeper_cache_requests_total", map[string]string{"tier": "list", "result": "hit"}); err != nil {
		t.Fatalf("fetch hits: %v", err)
	} else if got != 2 {
		t.Fatalf("expected hits=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "stashkeeper_cache_invalidations_total", map[string]string{"kind": "status"}); err != nil {
		t.Fatalf("fetch invalidations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected invalidations=1, got %f", got)
	}
}

func TestTransitionMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewTransitionMetrics(reg)
	metrics.Observe("STORAGE", "IN_USE", OutcomeApplied, 20*time.Millisecond)
	metrics.Observe("STORAGE", "IN_USE", OutcomeConflict, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	labels := map[string]string{"from": "STORAGE", "to": "IN_USE", "outcome": OutcomeApplied}
	if got, err := fetchCounterValue(mfs, "stashkeeper_transitions_total", labels); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 1 {
		t.Fatalf("expected applied=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "stashkeeper_transition_duration_seconds", map[string]string{"outcome": OutcomeApplied}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewCacheMetrics(nil).ObserveRequest("detail", CacheHit)
	NewTransitionMetrics(nil).Observe("a", "b", OutcomeApplied, time.Second)
	var nilMetrics *CacheMetrics
	nilMetrics.IncInvalidation("all")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
