// Package metrics exposes Prometheus counters for journal processing.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Line outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
)

// Collector groups the dashboard's metrics. A nil *Collector records nothing.
type Collector struct {
	// Lines counts journal lines by outcome: applied, ignored, or a skip reason.
	Lines *prometheus.CounterVec
	// Ops counts ledger operations applied, by kind.
	Ops *prometheus.CounterVec
	// Systems is the number of systems held by the ledger.
	Systems prometheus.Gauge
	// Stored counts systems written to the cache.
	Stored prometheus.Counter
}

// NewCollector registers the dashboard metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Lines: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "starchart_journal_lines_total",
				Help: "Journal lines processed, by outcome",
			},
			[]string{"outcome"},
		),
		Ops: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "starchart_ledger_ops_total",
				Help: "Ledger operations that changed state, by kind",
			},
			[]string{"op"},
		),
		Systems: f.NewGauge(prometheus.GaugeOpts{
			Name: "starchart_systems_visited",
			Help: "Systems recorded in the current session",
		}),
		Stored: f.NewCounter(prometheus.CounterOpts{
			Name: "starchart_systems_stored_total",
			Help: "Valuable systems written to the cache",
		}),
	}
}

// ObserveLine counts one journal line.
func (c *Collector) ObserveLine(outcome string) {
	if c == nil {
		return
	}
	c.Lines.WithLabelValues(outcome).Inc()
}

// ObserveOp counts one applied ledger operation.
func (c *Collector) ObserveOp(kind string) {
	if c == nil {
		return
	}
	c.Ops.WithLabelValues(kind).Inc()
}

// SetSystems records the number of systems in the ledger.
func (c *Collector) SetSystems(n int) {
	if c == nil {
		return
	}
	c.Systems.Set(float64(n))
}

// ObserveStored counts one cached system.
func (c *Collector) ObserveStored() {
	if c == nil {
		return
	}
	c.Stored.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics: serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics: shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics: serve %s: %w", addr, err)
		}
		return nil
	}
}
