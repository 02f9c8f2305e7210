// Package research implements the keyword-research engine: topic expansion
// into seed phrases, rate-gated parallel metric fetches, dedup filtering
// against tracked and already-shown keywords, and contraction into a ranked
// opportunity list.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"seoscout/internal/llm"
	"seoscout/internal/models"
)

// Expander turns a topic plus project context into 1-8 seed phrases covering
// distinct angles. Generation goes through the language model; any failure
// or malformed output degrades to a seed set containing only the topic.
type Expander struct {
	client llm.Client
	logger *slog.Logger
}

// NewExpander creates an Expander. A nil client always produces the topic
// fallback, which is useful for development without model credentials.
func NewExpander(client llm.Client, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{client: client, logger: logger}
}

// ExpandRequest carries the topic and the user context the prompt is built
// from.
type ExpandRequest struct {
	Topic           string
	Strategy        string // one of the models.Strategy* labels
	ProjectName     string
	Domain          string
	TrackedKeywords []string
}

// Expand produces a SeedSet for the request. It never fails: the literal
// topic is the guaranteed fallback seed.
func (e *Expander) Expand(ctx context.Context, req ExpandRequest) models.SeedSet {
	strategy := req.Strategy
	if !models.ValidStrategy(strategy) {
		strategy = models.StrategyComprehensive
	}
	fallback := models.SeedSet{Seeds: []string{strings.TrimSpace(req.Topic)}, Strategy: strategy}

	if e.client == nil {
		return fallback
	}

	raw, err := e.client.Generate(ctx, expanderSystemPrompt, buildExpandPrompt(req, strategy))
	if err != nil {
		e.logger.Warn("seed expansion failed, using topic fallback", "topic", req.Topic, "error", err)
		return fallback
	}

	seeds, err := llm.ParseSeedList(raw)
	if err != nil {
		e.logger.Warn("seed expansion output malformed, using topic fallback", "topic", req.Topic, "error", err)
		return fallback
	}

	cleaned := dedupeSeeds(seeds)
	if len(cleaned) == 0 {
		return fallback
	}
	if len(cleaned) > models.MaxSeeds {
		cleaned = cleaned[:models.MaxSeeds]
	}
	return models.SeedSet{Seeds: cleaned, Strategy: strategy}
}

// dedupeSeeds drops blank and duplicate (case-insensitive) entries while
// preserving order.
func dedupeSeeds(seeds []string) []string {
	seen := make(map[string]struct{}, len(seeds))
	out := make([]string, 0, len(seeds))
	for _, s := range seeds {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id := models.NormalizeKeyword(s)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, s)
	}
	return out
}

const expanderSystemPrompt = `You are a keyword research assistant. Given a topic and project context, produce seed phrases for querying a keyword metrics API.

Rules:
- Return only JSON of the shape {"seeds": ["...", "..."]}, nothing else.
- Produce between 1 and 8 short seed phrases (2-4 words each).
- Derive the niche from the tracked keywords, not from the project or domain name. If the tracked keywords are about "semrush alternative", seeds should be phrases like "semrush alternative" or "seo tools", never the project's own domain string.
- Cover distinct angles appropriate to the requested strategy: direct synonyms, competitor or alternative phrasing, problem-based queries, feature terms, audience segments, price or value terms, use-case terms.`

var strategyAngles = map[string]string{
	models.StrategyComprehensive:   "Cover a broad mix of angles: synonyms, competitors, problems, features, audiences, and value terms.",
	models.StrategyCompetitor:      "Focus on competitor and alternative phrasing: 'X alternative', 'tools like X', 'X vs Y'.",
	models.StrategyProblemSolution: "Focus on problem-based queries the audience searches before finding a product: 'how to ...', 'fix ...', 'why does ...'.",
	models.StrategyFeatureBased:    "Focus on concrete feature and capability terms buyers search for.",
}

func buildExpandPrompt(req ExpandRequest, strategy string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nStrategy: %s\n%s\n", strings.TrimSpace(req.Topic), strategy, strategyAngles[strategy])
	if req.ProjectName != "" {
		fmt.Fprintf(&b, "Project: %s\n", req.ProjectName)
	}
	if req.Domain != "" {
		fmt.Fprintf(&b, "Domain (context only, never a seed): %s\n", req.Domain)
	}
	if len(req.TrackedKeywords) > 0 {
		fmt.Fprintf(&b, "Keywords the user already tracks (use these to infer the niche):\n")
		for _, k := range req.TrackedKeywords {
			fmt.Fprintf(&b, "- %s\n", k)
		}
	}
	return b.String()
}
