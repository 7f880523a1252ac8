package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestProvisioningMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewProvisioningMetrics(reg)
	metrics.ObserveDuration("signup", 250*time.Millisecond)
	metrics.IncAttempt("signup", "success")
	metrics.IncRepair("failure")
	metrics.IncSelfHeal("student", "healed")
	metrics.IncFanoutFailure()
	metrics.IncInsertRetry("profiles")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "provision_attempts_total", "flow", "signup"); err != nil {
		t.Fatalf("fetch attempts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected attempts=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "profile_repairs_total", "outcome", "failure"); err != nil {
		t.Fatalf("fetch repairs: %v", err)
	} else if got != 1 {
		t.Fatalf("expected repairs=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "login_self_heals_total", "role", "student"); err != nil {
		t.Fatalf("fetch self-heals: %v", err)
	} else if got != 1 {
		t.Fatalf("expected self-heals=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "profile_insert_retries_total", "table", "profiles"); err != nil {
		t.Fatalf("fetch retries: %v", err)
	} else if got != 1 {
		t.Fatalf("expected retries=1, got %f", got)
	}

	if mf := findMetricFamily(mfs, "notification_fanout_failures_total"); mf == nil {
		t.Fatal("fan-out failure counter not registered")
	} else if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected fan-out failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "provision_duration_seconds", "flow", "signup"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestProvisioningMetricsNilReceiverSafe(t *testing.T) {
	var metrics *ProvisioningMetrics
	metrics.ObserveDuration("signup", time.Second)
	metrics.IncAttempt("signup", "success")
	metrics.IncRepair("success")
	metrics.IncSelfHeal("staff", "rejected")
	metrics.IncFanoutFailure()
	metrics.IncInsertRetry("student_profiles")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
