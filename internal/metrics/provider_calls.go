package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"seoscout/internal/models"
)

var providerCallDesc = prometheus.NewDesc(
	"seoscout_provider_calls_total",
	"Provider lookup count by outcome",
	[]string{"outcome"},
	nil,
)

// CallStore persists provider lookup outcomes. Per-seed detail lives in the
// store; the exported metric aggregates by outcome only, keeping label
// cardinality bounded regardless of what users search for.
type CallStore interface {
	IncrementProviderCall(ctx context.Context, seed, outcome string) error
	GetAllProviderCalls(ctx context.Context) ([]models.ProviderCall, error)
}

// ProviderCallCollector reads aggregated provider call outcomes from the
// store on each scrape.
type ProviderCallCollector struct {
	store CallStore
}

// Describe sends the metric descriptor to the channel.
func (c *ProviderCallCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- providerCallDesc
}

// Collect queries the store for provider call counts and emits one counter
// per outcome.
func (c *ProviderCallCollector) Collect(ch chan<- prometheus.Metric) {
	calls, err := c.store.GetAllProviderCalls(context.Background())
	if err != nil {
		slog.Error("failed to collect provider call metrics", "error", err)
		return
	}
	byOutcome := make(map[string]int64)
	for _, pc := range calls {
		byOutcome[pc.Outcome] += pc.Count
	}
	for outcome, count := range byOutcome {
		ch <- prometheus.MustNewConstMetric(
			providerCallDesc,
			prometheus.CounterValue,
			float64(count),
			outcome,
		)
	}
}

var (
	recorderMu    sync.RWMutex
	recorderStore CallStore
)

// InitRecorder registers the provider call collector and enables async
// outcome recording. Called once at startup after the database is up.
func InitRecorder(store CallStore) {
	recorderMu.Lock()
	defer recorderMu.Unlock()
	if recorderStore != nil {
		return
	}
	recorderStore = store
	prometheus.MustRegister(&ProviderCallCollector{store: store})
}

// RecordProviderCall asynchronously records a provider lookup outcome. A
// no-op until InitRecorder runs, so library tests need no database.
func RecordProviderCall(seed, outcome string) {
	recorderMu.RLock()
	store := recorderStore
	recorderMu.RUnlock()
	if store == nil {
		return
	}
	go func() {
		if err := store.IncrementProviderCall(context.Background(), seed, outcome); err != nil {
			slog.Error("failed to record provider call", "seed", seed, "outcome", outcome, "error", err)
		}
	}()
}
