package research

import (
	"context"
	"errors"
	"testing"

	"seoscout/internal/models"
)

func TestRankDeterministicFallback(t *testing.T) {
	// A client that always fails forces the fallback path.
	r := NewRanker(&stubLLM{err: errors.New("model unavailable")}, nil)

	candidates := []models.KeywordCandidate{
		{Keyword: "keyword gap analysis", Volume: vol(200), Difficulty: kd(80)}, // 40
		{Keyword: "seo reporting", Volume: vol(1000), Difficulty: kd(50)},       // 500
		{Keyword: "rank tracking", Volume: vol(400), Difficulty: kd(20)},        // 320
	}
	got := r.Rank(context.Background(), RankRequest{Candidates: candidates, K: 10, Topic: "seo"})

	if !got.Fallback {
		t.Fatal("Fallback = false, want true")
	}
	if len(got.Keywords) != 3 {
		t.Fatalf("ranked %d keywords, want 3", len(got.Keywords))
	}
	want := []string{"seo reporting", "rank tracking", "keyword gap analysis"}
	for i, w := range want {
		if got.Keywords[i].Keyword != w {
			t.Errorf("rank %d = %q, want %q", i, got.Keywords[i].Keyword, w)
		}
	}
	// Descending by the formula.
	for i := 0; i+1 < len(got.Keywords); i++ {
		if OpportunityScore(got.Keywords[i]) < OpportunityScore(got.Keywords[i+1]) {
			t.Errorf("scores not descending at %d", i)
		}
	}
	if got.Rationale == "" {
		t.Error("fallback rationale is empty")
	}
}

func TestRankFallbackNonEmptyForNonEmptyInput(t *testing.T) {
	r := NewRanker(&stubLLM{err: errors.New("down")}, nil)
	got := r.Rank(context.Background(), RankRequest{
		Candidates: []models.KeywordCandidate{{Keyword: "only one"}},
		K:          50,
	})
	if len(got.Keywords) != 1 {
		t.Errorf("ranked %d keywords, want 1", len(got.Keywords))
	}
}

func TestRankCommercialIntentBonus(t *testing.T) {
	r := NewRanker(nil, nil)
	// Identical metrics; the commercial phrasing must win.
	candidates := []models.KeywordCandidate{
		{Keyword: "keyword research process", Volume: vol(100), Difficulty: kd(50)},
		{Keyword: "best keyword research", Volume: vol(100), Difficulty: kd(50)},
	}
	got := r.Rank(context.Background(), RankRequest{Candidates: candidates, K: 2})
	if got.Keywords[0].Keyword != "best keyword research" {
		t.Errorf("top = %q, want commercial-intent keyword first", got.Keywords[0].Keyword)
	}
}

func TestHasCommercialIntent(t *testing.T) {
	tests := []struct {
		keyword string
		want    bool
	}{
		{"best seo software", true},
		{"semrush alternative", true},
		{"ahrefs vs semrush", true},
		{"how to do keyword research", false},
		{"bestseller list", false}, // whole words only
	}
	for _, tt := range tests {
		if got := HasCommercialIntent(tt.keyword); got != tt.want {
			t.Errorf("HasCommercialIntent(%q) = %v, want %v", tt.keyword, got, tt.want)
		}
	}
}

func TestRankUnknownMetricsDefaults(t *testing.T) {
	// nil volume scores zero, nil difficulty scores mid-scale.
	noMetrics := models.KeywordCandidate{Keyword: "mystery phrase"}
	if got := OpportunityScore(noMetrics); got != 0 {
		t.Errorf("score of metric-less candidate = %v, want 0", got)
	}
	noKD := models.KeywordCandidate{Keyword: "some phrase", Volume: vol(100)}
	if got := OpportunityScore(noKD); got != 50 {
		t.Errorf("score with nil difficulty = %v, want 50 (difficulty defaults to 50)", got)
	}
}

func TestRankCapsAtK(t *testing.T) {
	r := NewRanker(nil, nil)
	var candidates []models.KeywordCandidate
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, models.KeywordCandidate{Keyword: k, Volume: vol(10)})
	}
	got := r.Rank(context.Background(), RankRequest{Candidates: candidates, K: 2})
	if len(got.Keywords) != 2 {
		t.Errorf("ranked %d keywords, want 2", len(got.Keywords))
	}
}

func TestRankEmptyInput(t *testing.T) {
	r := NewRanker(nil, nil)
	got := r.Rank(context.Background(), RankRequest{K: 10})
	if len(got.Keywords) != 0 {
		t.Errorf("ranked %d keywords for empty input", len(got.Keywords))
	}
}

func TestRankModelPath(t *testing.T) {
	r := NewRanker(&stubLLM{output: `{"keywords": ["rank tracking", "made up keyword", "seo reporting"], "rationale": "Relevance and opportunity."}`}, nil)
	candidates := []models.KeywordCandidate{
		{Keyword: "seo reporting", Volume: vol(1000)},
		{Keyword: "Rank Tracking", Volume: vol(400)},
	}
	got := r.Rank(context.Background(), RankRequest{Candidates: candidates, K: 10, Topic: "seo"})

	if got.Fallback {
		t.Fatal("Fallback = true, want model path")
	}
	// Model order kept, invented keyword dropped, casing matched
	// case-insensitively against the pool.
	want := []string{"Rank Tracking", "seo reporting"}
	if len(got.Keywords) != len(want) {
		t.Fatalf("ranked = %d keywords, want %d", len(got.Keywords), len(want))
	}
	for i, w := range want {
		if got.Keywords[i].Keyword != w {
			t.Errorf("rank %d = %q, want %q", i, got.Keywords[i].Keyword, w)
		}
	}
	if got.Rationale != "Relevance and opportunity." {
		t.Errorf("rationale = %q", got.Rationale)
	}
}

func TestRankModelReturningOnlyUnknownKeywordsFallsBack(t *testing.T) {
	r := NewRanker(&stubLLM{output: `{"keywords": ["invented one", "invented two"], "rationale": "x"}`}, nil)
	got := r.Rank(context.Background(), RankRequest{
		Candidates: []models.KeywordCandidate{{Keyword: "real keyword", Volume: vol(5)}},
		K:          10,
	})
	if !got.Fallback {
		t.Fatal("expected fallback when model output maps to nothing")
	}
	if len(got.Keywords) != 1 {
		t.Errorf("fallback ranked %d keywords, want 1", len(got.Keywords))
	}
}
