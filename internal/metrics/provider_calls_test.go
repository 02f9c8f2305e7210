package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"seoscout/internal/models"
)

type stubCallStore struct {
	calls []models.ProviderCall
}

func (s *stubCallStore) IncrementProviderCall(_ context.Context, _, _ string) error {
	return nil
}

func (s *stubCallStore) GetAllProviderCalls(_ context.Context) ([]models.ProviderCall, error) {
	return s.calls, nil
}

func TestProviderCallCollectorAggregatesByOutcome(t *testing.T) {
	// Seeds are user-supplied text and must not become metric labels; the
	// collector folds all seeds into one series per outcome.
	store := &stubCallStore{calls: []models.ProviderCall{
		{Seed: "seo tools", Outcome: models.OutcomeOK, Count: 3},
		{Seed: "semrush alternative", Outcome: models.OutcomeOK, Count: 4},
		{Seed: "seo tools", Outcome: models.OutcomeRetried, Count: 2},
	}}
	collector := &ProviderCallCollector{store: store}

	expected := `
# HELP seoscout_provider_calls_total Provider lookup count by outcome
# TYPE seoscout_provider_calls_total counter
seoscout_provider_calls_total{outcome="ok"} 7
seoscout_provider_calls_total{outcome="retried"} 2
`
	if err := testutil.CollectAndCompare(collector, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected collector output: %v", err)
	}
}
