package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"seoscout/internal/history"
	"seoscout/internal/metrics"
	"seoscout/internal/models"
)

// ErrEmptyTopic reports a research request without a topic.
var ErrEmptyTopic = errors.New("research topic is empty")

// TrackedSource supplies the keyword texts a project already tracks. Reads
// happen at request start so the dedup filter sees the latest committed
// state, never a snapshot from an earlier request.
type TrackedSource interface {
	TrackedKeywordTexts(ctx context.Context, projectID uuid.UUID) ([]string, error)
}

// Pipeline runs the expand -> fetch -> contract flow for one research
// request. One instance serves all conversations; per-request state lives on
// the stack and in the history store.
type Pipeline struct {
	expander *Expander
	fetcher  *Fetcher
	ranker   *Ranker
	tracked  TrackedSource
	history  history.Store
	defaultK int
	logger   *slog.Logger
}

// NewPipeline wires the pipeline. defaultK bounds the ranked result when the
// request does not ask for a specific K.
func NewPipeline(expander *Expander, fetcher *Fetcher, ranker *Ranker, tracked TrackedSource, hist history.Store, defaultK int, logger *slog.Logger) *Pipeline {
	if defaultK <= 0 {
		defaultK = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		expander: expander,
		fetcher:  fetcher,
		ranker:   ranker,
		tracked:  tracked,
		history:  hist,
		defaultK: defaultK,
		logger:   logger,
	}
}

// Request is one research invocation, scoped to a project and conversation.
type Request struct {
	ProjectID      uuid.UUID
	ConversationID string
	Topic          string
	Strategy       string
	K              int
	ProjectName    string
	Domain         string
}

// Meta describes the candidate pool behind a result, for paging and
// observability.
type Meta struct {
	RawCount      int `json:"raw_count"`      // candidates fetched before dedup
	PoolSize      int `json:"pool_size"`      // after dedup
	FilteredCount int `json:"filtered_count"` // after removing tracked/shown
	SeedsUsed     int `json:"seeds_used"`
	SeedsFailed   int `json:"seeds_failed"`
	Remaining     int `json:"remaining"` // filtered candidates not in this result
}

// Result is a ranked research answer.
type Result struct {
	Keywords  []models.KeywordCandidate `json:"keywords"`
	Rationale string                    `json:"rationale"`
	Fallback  bool                      `json:"fallback"`
	Seeds     models.SeedSet            `json:"seeds"`
	Meta      Meta                      `json:"meta"`
}

// Research runs the full pipeline. Tracked keywords and shown history are
// read fresh at the start; the filtered pool is cached for "show more"; the
// caller is responsible for appending presented keywords to the shown
// history after delivery.
func (p *Pipeline) Research(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyTopic
	}
	metrics.RecordResearchRequest()

	trackedKeywords, err := p.tracked.TrackedKeywordTexts(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("read tracked keywords: %w", err)
	}
	shown, err := p.history.Shown(ctx, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("read shown history: %w", err)
	}

	seeds := p.expander.Expand(ctx, ExpandRequest{
		Topic:           req.Topic,
		Strategy:        req.Strategy,
		ProjectName:     req.ProjectName,
		Domain:          req.Domain,
		TrackedKeywords: trackedKeywords,
	})

	pool, err := p.fetcher.Fetch(ctx, seeds)
	if err != nil {
		return nil, err
	}

	filtered := Filter(pool, TrackedSet(trackedKeywords), shown)

	// Cache the filtered pool so "show more" pages without re-fetching. A
	// cache failure degrades paging, not this result.
	cached := &models.CandidatePool{
		Candidates:  filtered,
		RawCount:    pool.RawCount,
		SeedsUsed:   pool.SeedsUsed,
		SeedsFailed: pool.SeedsFailed,
	}
	if err := p.history.SavePool(ctx, req.ConversationID, cached); err != nil {
		p.logger.Warn("failed to cache candidate pool", "conversation", req.ConversationID, "error", err)
	}

	k := req.K
	if k <= 0 {
		k = p.defaultK
	}
	ranked := p.ranker.Rank(ctx, RankRequest{
		Candidates:      filtered,
		K:               k,
		Topic:           req.Topic,
		ProjectName:     req.ProjectName,
		TrackedKeywords: trackedKeywords,
	})

	remaining := len(filtered) - len(ranked.Keywords)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Keywords:  ranked.Keywords,
		Rationale: ranked.Rationale,
		Fallback:  ranked.Fallback,
		Seeds:     seeds,
		Meta: Meta{
			RawCount:      pool.RawCount,
			PoolSize:      pool.Size(),
			FilteredCount: len(filtered),
			SeedsUsed:     pool.SeedsUsed,
			SeedsFailed:   pool.SeedsFailed,
			Remaining:     remaining,
		},
	}, nil
}

// ShowMore pages through the conversation's cached pool, skipping keywords
// already shown. An exhausted pool returns an empty page; a conversation
// with no cached pool returns history.ErrNoPool.
func (p *Pipeline) ShowMore(ctx context.Context, conversationID string, pageSize int) ([]models.KeywordCandidate, int, error) {
	pool, err := p.history.Pool(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	shown, err := p.history.Shown(ctx, conversationID)
	if err != nil {
		return nil, 0, fmt.Errorf("read shown history: %w", err)
	}

	page := NextPage(pool.Candidates, pageSize, shown)

	unreturned := 0
	for _, c := range pool.Candidates {
		if _, ok := shown[c.Identity()]; !ok {
			unreturned++
		}
	}
	remaining := unreturned - len(page)
	if remaining < 0 {
		remaining = 0
	}
	return page, remaining, nil
}
