package research

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"seoscout/internal/llm"
	"seoscout/internal/metrics"
	"seoscout/internal/models"
)

// fallbackRationale is returned when ranking degrades to the deterministic
// formula.
const fallbackRationale = "Ranked by search volume weighted against keyword difficulty, with a boost for commercial intent."

// Additive score bonus for keywords with commercial-intent phrasing.
const commercialIntentBonus = 250.0

// commercialIntentMarkers are phrasings that signal a commercial or
// transactional query.
var commercialIntentMarkers = []string{
	"best", "alternative", "vs", "top", "review", "pricing", "price", "cheap", "buy", "tool", "software",
}

// Ranker reduces a filtered candidate list to the top-K opportunities with a
// short rationale. The language model ranks for relevance and opportunity;
// when it fails or returns output that does not parse, a deterministic
// volume/difficulty score takes over. Rank never returns an error.
type Ranker struct {
	client llm.Client
	logger *slog.Logger
}

// NewRanker creates a Ranker. A nil client always uses the deterministic
// fallback.
func NewRanker(client llm.Client, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{client: client, logger: logger}
}

// RankRequest carries the filtered candidates and the context the model
// ranks against.
type RankRequest struct {
	Candidates      []models.KeywordCandidate
	K               int
	Topic           string
	ProjectName     string
	TrackedKeywords []string
}

// RankResult is the contracted opportunity list.
type RankResult struct {
	Keywords  []models.KeywordCandidate
	Rationale string
	Fallback  bool // true when the deterministic formula produced the order
}

// Rank returns the top-K candidates. K defaults to 50 and is capped by the
// candidate count.
func (r *Ranker) Rank(ctx context.Context, req RankRequest) RankResult {
	k := req.K
	if k <= 0 {
		k = 50
	}
	if len(req.Candidates) == 0 {
		return RankResult{}
	}

	if r.client != nil {
		if res, ok := r.rankWithModel(ctx, req, k); ok {
			return res
		}
		metrics.RecordRankFallback()
	}
	return r.rankDeterministic(req.Candidates, k)
}

// rankWithModel asks the model for an ordered keyword list and maps it back
// onto the candidates. Returns ok=false on any failure so the caller falls
// back.
func (r *Ranker) rankWithModel(ctx context.Context, req RankRequest, k int) (RankResult, bool) {
	raw, err := r.client.Generate(ctx, rankerSystemPrompt, buildRankPrompt(req, k))
	if err != nil {
		r.logger.Warn("ranking call failed, using deterministic fallback", "error", err)
		return RankResult{}, false
	}
	ranking, err := llm.ParseRanking(raw)
	if err != nil {
		r.logger.Warn("ranking output malformed, using deterministic fallback", "error", err)
		return RankResult{}, false
	}

	byIdentity := make(map[string]models.KeywordCandidate, len(req.Candidates))
	for _, c := range req.Candidates {
		byIdentity[c.Identity()] = c
	}

	out := make([]models.KeywordCandidate, 0, k)
	seen := make(map[string]struct{}, k)
	for _, kw := range ranking.Keywords {
		id := models.NormalizeKeyword(kw)
		c, ok := byIdentity[id]
		if !ok {
			// The model may not invent keywords that were not in the pool.
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	if len(out) == 0 {
		r.logger.Warn("ranking returned no known keywords, using deterministic fallback")
		return RankResult{}, false
	}
	return RankResult{Keywords: out, Rationale: ranking.Rationale}, true
}

// rankDeterministic sorts by volume * (1 - difficulty/100) plus a
// commercial-intent bonus, descending. Unknown volume counts as zero;
// unknown difficulty as mid-scale.
func (r *Ranker) rankDeterministic(candidates []models.KeywordCandidate, k int) RankResult {
	ranked := make([]models.KeywordCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return OpportunityScore(ranked[i]) > OpportunityScore(ranked[j])
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return RankResult{Keywords: ranked, Rationale: fallbackRationale, Fallback: true}
}

// OpportunityScore is the deterministic ranking formula.
func OpportunityScore(c models.KeywordCandidate) float64 {
	volume := 0.0
	if c.Volume != nil {
		volume = float64(*c.Volume)
	}
	difficulty := 50.0
	if c.Difficulty != nil {
		difficulty = *c.Difficulty
	}
	score := volume * (1 - difficulty/100)
	if HasCommercialIntent(c.Keyword) {
		score += commercialIntentBonus
	}
	return score
}

// HasCommercialIntent reports whether the keyword contains commercial or
// transactional phrasing.
func HasCommercialIntent(keyword string) bool {
	words := strings.Fields(models.NormalizeKeyword(keyword))
	for _, w := range words {
		for _, marker := range commercialIntentMarkers {
			if w == marker {
				return true
			}
		}
	}
	return false
}

const rankerSystemPrompt = `You are a keyword research assistant. You receive keyword candidates with metrics and pick the most valuable opportunities.

Rules:
- Return only JSON of the shape {"keywords": ["...", ...], "rationale": "..."}.
- Only use keywords from the provided list, exactly as written.
- Drop keywords irrelevant to the topic and niche.
- Prefer high search volume, low difficulty, and commercial or transactional intent.
- Order from best opportunity to worst. The rationale is 1-2 sentences.`

func buildRankPrompt(req RankRequest, k int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nReturn the top %d keywords.\n", req.Topic, k)
	if req.ProjectName != "" {
		fmt.Fprintf(&b, "Project: %s\n", req.ProjectName)
	}
	if len(req.TrackedKeywords) > 0 {
		fmt.Fprintf(&b, "Already tracked (niche context): %s\n", strings.Join(req.TrackedKeywords, ", "))
	}
	b.WriteString("Candidates (keyword | volume | difficulty | competition):\n")
	for _, c := range req.Candidates {
		vol := "-"
		if c.Volume != nil {
			vol = fmt.Sprintf("%d", *c.Volume)
		}
		kd := "-"
		if c.Difficulty != nil {
			kd = fmt.Sprintf("%.0f", *c.Difficulty)
		}
		fmt.Fprintf(&b, "- %s | %s | %s | %s\n", c.Keyword, vol, kd, c.Competition)
	}
	return b.String()
}
