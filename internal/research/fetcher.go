package research

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"seoscout/internal/metrics"
	"seoscout/internal/models"
	"seoscout/internal/provider"
	"seoscout/internal/ratelimit"
)

// ErrNoData reports that every seed lookup failed, so the research request
// has nothing to work with. Partial failure is not an error: the pipeline
// continues with whatever seeds succeeded.
var ErrNoData = errors.New("no keyword data available: all seed lookups failed")

// Fetcher converts a SeedSet into one deduplicated CandidatePool. Each seed
// gets its own lookup task; tasks run concurrently and each acquires a
// governor slot before calling the provider. A transient failure is retried
// once after a short backoff; a seed that still fails contributes nothing.
type Fetcher struct {
	provider     provider.MetricsProvider
	governor     *ratelimit.Governor
	perSeedLimit int
	retryBackoff time.Duration
	logger       *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(p provider.MetricsProvider, g *ratelimit.Governor, perSeedLimit int, retryBackoff time.Duration, logger *slog.Logger) *Fetcher {
	if perSeedLimit <= 0 {
		perSeedLimit = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		provider:     p,
		governor:     g,
		perSeedLimit: perSeedLimit,
		retryBackoff: retryBackoff,
		logger:       logger,
	}
}

// Fetch runs one lookup per seed in parallel, waits for all of them, and
// merges results in seed-declaration order with first-seen-wins dedup.
// Returns ErrNoData only when every seed failed.
func (f *Fetcher) Fetch(ctx context.Context, seeds models.SeedSet) (*models.CandidatePool, error) {
	n := len(seeds.Seeds)
	if n == 0 {
		return nil, ErrNoData
	}

	// Per-seed result slots. Results are buffered and merged after the join
	// so first-seen-wins is decided by seed order, not completion order.
	results := make([][]provider.RawCandidate, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i, seed := range seeds.Seeds {
		wg.Add(1)
		go func(i int, seed string) {
			defer wg.Done()
			results[i], errs[i] = f.fetchSeed(ctx, seed)
		}(i, seed)
	}
	wg.Wait()

	pool := &models.CandidatePool{}
	for i, seed := range seeds.Seeds {
		if errs[i] != nil {
			f.logger.Warn("seed lookup dropped", "seed", seed, "error", errs[i])
			metrics.RecordSeedFailure()
			pool.SeedsFailed++
			continue
		}
		pool.SeedsUsed++
		pool.RawCount += len(results[i])
		for _, raw := range results[i] {
			c := candidateFromRaw(raw, seed)
			if models.NormalizeKeyword(c.Keyword) == "" {
				continue
			}
			pool.Add(c)
		}
	}

	if pool.SeedsUsed == 0 {
		return nil, ErrNoData
	}
	return pool, nil
}

// fetchSeed performs one gated lookup, retrying once after retryBackoff when
// the failure is transient. Every attempt acquires its own governor slot:
// the retry is a second outbound call.
func (f *Fetcher) fetchSeed(ctx context.Context, seed string) ([]provider.RawCandidate, error) {
	if err := f.governor.Acquire(ctx); err != nil {
		return nil, err
	}
	out, err := f.provider.Lookup(ctx, seed, f.perSeedLimit)
	if err == nil {
		metrics.RecordProviderCall(seed, models.OutcomeOK)
		return out, nil
	}
	if !provider.IsTransient(err) {
		metrics.RecordProviderCall(seed, models.OutcomeFatal)
		return nil, err
	}

	metrics.RecordProviderRetry()
	metrics.RecordProviderCall(seed, models.OutcomeRetried)
	f.logger.Debug("retrying seed lookup", "seed", seed, "error", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.retryBackoff):
	}

	if err := f.governor.Acquire(ctx); err != nil {
		return nil, err
	}
	out, err = f.provider.Lookup(ctx, seed, f.perSeedLimit)
	if err != nil {
		metrics.RecordProviderCall(seed, models.OutcomeTransient)
		return nil, err
	}
	metrics.RecordProviderCall(seed, models.OutcomeOK)
	return out, nil
}

// candidateFromRaw normalizes a provider row into a KeywordCandidate.
// Difficulty is clamped to the 0-100 scale.
func candidateFromRaw(raw provider.RawCandidate, seed string) models.KeywordCandidate {
	difficulty := raw.Difficulty
	if difficulty != nil {
		d := *difficulty
		if d < 0 {
			d = 0
		} else if d > 100 {
			d = 100
		}
		difficulty = &d
	}
	return models.KeywordCandidate{
		Keyword:     raw.Keyword,
		Volume:      raw.Volume,
		Competition: models.NormalizeCompetition(raw.Competition),
		Difficulty:  difficulty,
		CPC:         raw.CPC,
		Seed:        seed,
	}
}
