package cache

import (
	"context"
	"time"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/metrics"
	"github.com/papapumpkin/starchart/internal/telemetry"
)

// storeTimeout bounds a single archive write.
const storeTimeout = 5 * time.Second

// Archiver stores departed systems in a Cache. It satisfies
// ledger.Archiver. Failures go to telemetry; the ledger never sees them.
type Archiver struct {
	Cache     *Cache
	Telemetry *telemetry.Emitter
	Metrics   *metrics.Collector

	// OnStored is called after a system is written.
	OnStored func(sys ledger.System)
}

// Archive stores sys when it is valuable enough.
func (a *Archiver) Archive(sys ledger.System) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	stored, err := a.Cache.StoreSystem(ctx, sys)
	if err != nil {
		a.Telemetry.Record(telemetry.KindStoreFailed, sys.Name, map[string]string{"error": err.Error()})
		return
	}
	if !stored {
		return
	}
	a.Metrics.ObserveStored()
	a.Telemetry.Record(telemetry.KindSystemStored, sys.Name, map[string]any{
		"address":     sys.Address,
		"total_value": sys.TotalValue,
	})
	if a.OnStored != nil {
		a.OnStored(sys)
	}
}
