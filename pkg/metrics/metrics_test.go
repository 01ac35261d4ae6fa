package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/v1/parts", "200", 25*time.Millisecond)
	m.Observe("GET", "/api/v1/parts", "200", 30*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/parts", "200")); got != 2 {
		t.Fatalf("expected 2 requests counted, got %v", got)
	}
}

func TestStoreMetricsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.Record("add_part", nil)
	m.Record("add_part", errors.New("boom"))

	if got := testutil.ToFloat64(m.operations.WithLabelValues("add_part", "ok")); got != 1 {
		t.Fatalf("expected 1 ok, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("add_part", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	var h *HTTPMetrics
	h.Observe("GET", "", "200", time.Millisecond)

	s := NewStoreMetrics(nil)
	s.Record("", nil)
}
