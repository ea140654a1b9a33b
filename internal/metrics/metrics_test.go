package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLine(t *testing.T) {
	t.Parallel()
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveLine(OutcomeApplied)
	c.ObserveLine(OutcomeApplied)
	c.ObserveLine("decode")

	if got := testutil.ToFloat64(c.Lines.WithLabelValues(OutcomeApplied)); got != 2 {
		t.Errorf("applied = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Lines.WithLabelValues("decode")); got != 1 {
		t.Errorf("decode = %v, want 1", got)
	}
}

func TestObserveOpAndSystems(t *testing.T) {
	t.Parallel()
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveOp("arrival")
	c.SetSystems(3)
	c.SetSystems(4)
	c.ObserveStored()

	if got := testutil.ToFloat64(c.Ops.WithLabelValues("arrival")); got != 1 {
		t.Errorf("arrival ops = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Systems); got != 4 {
		t.Errorf("systems = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.Stored); got != 1 {
		t.Errorf("stored = %v, want 1", got)
	}
}

func TestNilCollector_NoOp(t *testing.T) {
	t.Parallel()
	var c *Collector
	c.ObserveLine(OutcomeApplied)
	c.ObserveOp("arrival")
	c.SetSystems(1)
	c.ObserveStored()
}

func TestHandler(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveLine(OutcomeIgnored)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `starchart_journal_lines_total{outcome="ignored"} 1`) {
		t.Errorf("metrics output missing line counter:\n%s", body)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry()); err != nil {
		t.Errorf("Serve after cancel: %v", err)
	}
}
