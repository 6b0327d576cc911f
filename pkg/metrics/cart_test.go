package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.IncOperation("add_product", ResultCommitted)
	metrics.IncOperation("add_product", ResultCommitted)
	metrics.IncOperation("add_product", ResultRejected)
	metrics.IncNotification("stock_exceeded")
	metrics.ObserveGateway("get_stock", 120*time.Millisecond, nil)
	metrics.ObserveGateway("get_stock", 80*time.Millisecond, errors.New("down"))
	metrics.IncPersistError()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_operations_total", map[string]string{"operation": "add_product", "result": ResultCommitted}); err != nil {
		t.Fatalf("fetch committed: %v", err)
	} else if got != 2 {
		t.Fatalf("expected committed=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_operations_total", map[string]string{"operation": "add_product", "result": ResultRejected}); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_notifications_total", map[string]string{"kind": "stock_exceeded"}); err != nil {
		t.Fatalf("fetch notifications: %v", err)
	} else if got != 1 {
		t.Fatalf("expected notifications=1, got %f", got)
	}

	if got, err := fetchHistogramCount(mfs, "cart_gateway_duration_seconds", map[string]string{"call": "get_stock", "outcome": "error"}); err != nil {
		t.Fatalf("fetch gateway: %v", err)
	} else if got != 1 {
		t.Fatalf("expected one failed gateway sample, got %d", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_persist_errors_total", nil); err != nil {
		t.Fatalf("fetch persist errors: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persist errors=1, got %f", got)
	}
}

func TestCartMetricsNilSafe(t *testing.T) {
	var metrics *CartMetrics
	metrics.IncOperation("add_product", ResultCommitted)
	metrics.IncNotification("add_failed")
	metrics.ObserveGateway("get_product", time.Second, nil)
	metrics.IncPersistError()

	unregistered := NewCartMetrics(nil)
	unregistered.IncOperation("remove_product", ResultCommitted)
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

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleCount(), nil
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
		if value, ok := want[pair.GetName()]; ok && value == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
