package telemetry

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTask("pool", nil, 1)
	m.ObserveBatch(errors.New("x"))
	m.AddAnalyzed(3)
	m.AddIngested("instagram", "creator", 1)
	m.ObserveApifyRun("actor", "SUCCEEDED")
	m.ObserveAvatar("ok")
	m.ObserveHTTP("GET", "200")
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.ObserveTask("avatars", nil, 0.2)
	m.ObserveTask("avatars", errors.New("boom"), 0.1)
	m.ObserveBatch(nil)
	m.AddAnalyzed(4)
	m.AddIngested("youtube", "video", 7)

	if got := testutil.ToFloat64(m.tasksTotal.WithLabelValues("avatars", "error")); got != 1 {
		t.Fatalf("expected 1 failed task, got %v", got)
	}
	if got := testutil.ToFloat64(m.creatorsAnalyzed); got != 4 {
		t.Fatalf("expected 4 analyzed, got %v", got)
	}
	if got := testutil.ToFloat64(m.recordsIngested.WithLabelValues("youtube", "video")); got != 7 {
		t.Fatalf("expected 7 videos, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "creatorscope_scoring_batches_total") {
		t.Fatalf("metrics output missing batch counter:\n%s", rec.Body.String())
	}
}
