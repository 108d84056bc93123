package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCronJobMetricsObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveRun("booking-completion", 250*time.Millisecond, nil)
	m.ObserveRun("booking-completion", time.Second, errors.New("db down"))
	m.ObserveRun("", time.Millisecond, nil)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	runs := findMetricFamily(mfs, "staybook_cron_job_runs_total")
	if runs == nil {
		t.Fatal("runs metric missing")
	}
	if got := counterWithLabels(runs, map[string]string{"job": "booking-completion", "result": "success"}); got != 1 {
		t.Fatalf("expected 1 success, got %f", got)
	}
	if got := counterWithLabels(runs, map[string]string{"job": "booking-completion", "result": "failure"}); got != 1 {
		t.Fatalf("expected 1 failure, got %f", got)
	}
	if got := counterWithLabels(runs, map[string]string{"job": "unknown", "result": "success"}); got != 1 {
		t.Fatalf("blank job should be labelled unknown, got %f", got)
	}

	duration := findMetricFamily(mfs, "staybook_cron_job_duration_seconds")
	if duration == nil {
		t.Fatal("duration metric missing")
	}
	for _, metric := range duration.GetMetric() {
		if labelValue(metric, "job") == "booking-completion" && metric.GetHistogram().GetSampleCount() != 2 {
			t.Fatalf("expected 2 duration samples, got %d", metric.GetHistogram().GetSampleCount())
		}
	}

	last := findMetricFamily(mfs, "staybook_cron_job_last_success_timestamp_seconds")
	if last == nil || len(last.GetMetric()) != 2 {
		t.Fatalf("expected last-success gauge for two jobs, got %v", last)
	}
	if last.GetMetric()[0].GetGauge().GetValue() <= 0 {
		t.Fatal("expected last-success timestamp to be set")
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("outbox-retention", time.Second, nil)
	NewCronJobMetrics(nil).ObserveRun("outbox-retention", time.Second, errors.New("x"))
}
