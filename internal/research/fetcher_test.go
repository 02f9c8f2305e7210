package research

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"seoscout/internal/models"
	"seoscout/internal/provider"
	"seoscout/internal/ratelimit"
)

func testGovernor(t *testing.T) *ratelimit.Governor {
	t.Helper()
	g, err := ratelimit.New(1000, time.Minute)
	if err != nil {
		t.Fatalf("ratelimit.New: %v", err)
	}
	return g
}

// TestFetchMergeFirstSeenWins runs the canonical merge: a keyword returned
// by two seeds keeps the metrics from the earlier-declared seed, regardless
// of which lookup finishes first.
func TestFetchMergeFirstSeenWins(t *testing.T) {
	p := newStubProvider()
	p.results["seo tools"] = []provider.RawCandidate{
		{Keyword: "A", Volume: vol(100)},
		{Keyword: "B", Volume: vol(50)},
		{Keyword: "C", Volume: vol(10)},
	}
	p.results["semrush alternative"] = []provider.RawCandidate{
		{Keyword: "B", Volume: vol(999)},
		{Keyword: "D", Volume: vol(80)},
	}
	// First seed finishes last; merge order must not care.
	p.delay["seo tools"] = 50 * time.Millisecond

	f := NewFetcher(p, testGovernor(t), 3, time.Millisecond, nil)
	pool, err := f.Fetch(context.Background(), models.SeedSet{
		Seeds:    []string{"seo tools", "semrush alternative"},
		Strategy: models.StrategyComprehensive,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := map[string]int64{"a": 100, "b": 50, "c": 10, "d": 80}
	if pool.Size() != len(want) {
		t.Fatalf("pool size = %d, want %d: %+v", pool.Size(), len(want), pool.Candidates)
	}
	for _, c := range pool.Candidates {
		wantVol, ok := want[c.Identity()]
		if !ok {
			t.Errorf("unexpected candidate %q", c.Keyword)
			continue
		}
		if c.Volume == nil || *c.Volume != wantVol {
			t.Errorf("candidate %q volume = %v, want %d", c.Keyword, c.Volume, wantVol)
		}
	}
	if pool.RawCount != 5 {
		t.Errorf("RawCount = %d, want 5", pool.RawCount)
	}
	if pool.SeedsUsed != 2 || pool.SeedsFailed != 0 {
		t.Errorf("SeedsUsed/SeedsFailed = %d/%d, want 2/0", pool.SeedsUsed, pool.SeedsFailed)
	}

	// Candidate B must credit the first-declared seed.
	for _, c := range pool.Candidates {
		if c.Identity() == "b" && c.Seed != "seo tools" {
			t.Errorf("candidate B seed = %q, want %q", c.Seed, "seo tools")
		}
	}
}

func TestFetchPoolNeverHoldsDuplicateIdentity(t *testing.T) {
	p := newStubProvider()
	p.results["s1"] = []provider.RawCandidate{
		{Keyword: "SEO Audit"},
		{Keyword: "seo audit "},
		{Keyword: " rank tracker"},
	}
	p.results["s2"] = []provider.RawCandidate{
		{Keyword: "Rank Tracker"},
		{Keyword: "seo AUDIT"},
	}

	f := NewFetcher(p, testGovernor(t), 30, time.Millisecond, nil)
	pool, err := f.Fetch(context.Background(), models.SeedSet{Seeds: []string{"s1", "s2"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range pool.Candidates {
		if seen[c.Identity()] {
			t.Fatalf("duplicate identity %q in pool", c.Identity())
		}
		seen[c.Identity()] = true
	}
	if pool.Size() != 2 {
		t.Errorf("pool size = %d, want 2", pool.Size())
	}
}

func TestFetchRetriesTransientOnce(t *testing.T) {
	p := newStubProvider()
	p.results["seo tools"] = []provider.RawCandidate{{Keyword: "A", Volume: vol(10)}}
	p.failures["seo tools"] = 1
	p.failWith = fmt.Errorf("%w: status 503", provider.ErrTransient)

	f := NewFetcher(p, testGovernor(t), 30, time.Millisecond, nil)
	pool, err := f.Fetch(context.Background(), models.SeedSet{Seeds: []string{"seo tools"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if pool.Size() != 1 {
		t.Fatalf("pool size = %d, want 1", pool.Size())
	}
	if got := p.callCount("seo tools"); got != 2 {
		t.Errorf("lookup called %d times, want 2 (original + retry)", got)
	}
}

func TestFetchDropsSeedAfterSecondTransientFailure(t *testing.T) {
	p := newStubProvider()
	p.results["good"] = []provider.RawCandidate{{Keyword: "A"}}
	p.results["bad"] = []provider.RawCandidate{{Keyword: "B"}}
	p.failures["bad"] = 2
	p.failWith = fmt.Errorf("%w: timeout", provider.ErrTransient)

	f := NewFetcher(p, testGovernor(t), 30, time.Millisecond, nil)
	pool, err := f.Fetch(context.Background(), models.SeedSet{Seeds: []string{"good", "bad"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if pool.Size() != 1 || pool.Candidates[0].Identity() != "a" {
		t.Errorf("pool = %+v, want only candidate A", pool.Candidates)
	}
	if pool.SeedsFailed != 1 || pool.SeedsUsed != 1 {
		t.Errorf("SeedsUsed/SeedsFailed = %d/%d, want 1/1", pool.SeedsUsed, pool.SeedsFailed)
	}
	if got := p.callCount("bad"); got != 2 {
		t.Errorf("bad seed called %d times, want 2 (no second retry)", got)
	}
}

func TestFetchFatalErrorNotRetried(t *testing.T) {
	p := newStubProvider()
	p.results["s"] = []provider.RawCandidate{{Keyword: "A"}}
	p.failures["s"] = 1
	p.failWith = fmt.Errorf("%w: status 401", provider.ErrFatal)

	f := NewFetcher(p, testGovernor(t), 30, time.Millisecond, nil)
	_, err := f.Fetch(context.Background(), models.SeedSet{Seeds: []string{"s"}})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Fetch = %v, want ErrNoData", err)
	}
	if got := p.callCount("s"); got != 1 {
		t.Errorf("lookup called %d times, want 1 (fatal errors are not retried)", got)
	}
}

func TestFetchAllSeedsFailedReturnsErrNoData(t *testing.T) {
	p := newStubProvider()
	p.failures["s1"] = 2
	p.failures["s2"] = 2
	p.failWith = fmt.Errorf("%w: down", provider.ErrTransient)

	f := NewFetcher(p, testGovernor(t), 30, time.Millisecond, nil)
	_, err := f.Fetch(context.Background(), models.SeedSet{Seeds: []string{"s1", "s2"}})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Fetch = %v, want ErrNoData", err)
	}
}

func TestFetchEmptySeedSet(t *testing.T) {
	f := NewFetcher(newStubProvider(), testGovernor(t), 30, time.Millisecond, nil)
	if _, err := f.Fetch(context.Background(), models.SeedSet{}); !errors.Is(err, ErrNoData) {
		t.Errorf("Fetch with no seeds = %v, want ErrNoData", err)
	}
}
