package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestSubmissionMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewSubmissionMetrics(reg)
	metrics.ObserveSubmission(enums.SubmissionSent, 250*time.Millisecond)
	metrics.ObserveSubmission(enums.SubmissionSent, 100*time.Millisecond)
	metrics.ObserveSubmission(enums.SubmissionDispatchError, 50*time.Millisecond)
	metrics.ObserveUpload(enums.StorageProviderDrive, true)
	metrics.ObserveUpload(enums.StorageProviderDrive, false)
	metrics.ObserveUpload("", false)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "order_submissions_total", map[string]string{"outcome": "sent"}); err != nil {
		t.Fatalf("fetch sent: %v", err)
	} else if got != 2 {
		t.Fatalf("expected sent=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "order_submissions_total", map[string]string{"outcome": "dispatch_failed"}); err != nil {
		t.Fatalf("fetch dispatch_failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dispatch_failed=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_submission_duration_seconds", map[string]string{"outcome": "sent"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "logo_uploads_total", map[string]string{"provider": "drive", "result": "failure"}); err != nil {
		t.Fatalf("fetch uploads: %v", err)
	} else if got != 1 {
		t.Fatalf("expected drive failure=1, got %f", got)
	}

	if _, err := fetchCounterValue(mfs, "logo_uploads_total", map[string]string{"provider": "unknown"}); err != nil {
		t.Fatalf("empty provider should be labelled unknown: %v", err)
	}
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.ObserveRequest(http.MethodPost, "/api/v1/forms/{sessionId}/next", http.StatusOK, 10*time.Millisecond)
	metrics.ObserveRequest(http.MethodPost, "/api/v1/forms/{sessionId}/next", http.StatusBadRequest, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	labels := map[string]string{"route": "/api/v1/forms/{sessionId}/next", "status": "400"}
	if got, err := fetchCounterValue(mfs, "http_requests_total", labels); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 request with status 400, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewSubmissionMetrics(nil).ObserveSubmission(enums.SubmissionSent, time.Second)
	NewHTTPMetrics(nil).ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Second)
	var m *SubmissionMetrics
	m.ObserveUpload(enums.StorageProviderGCS, true)
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
		if v, found := want[pair.GetName()]; found && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
