package models

import "strings"

// Competition buckets reported by the metrics provider.
const (
	CompetitionLow     = "low"
	CompetitionMedium  = "medium"
	CompetitionHigh    = "high"
	CompetitionUnknown = "unknown"
)

// KeywordCandidate is one keyword returned by the metrics provider for a
// seed, with its associated metrics. Volume, Difficulty and CPC are nil when
// the provider did not report them.
type KeywordCandidate struct {
	Keyword     string   `json:"keyword"`
	Volume      *int64   `json:"volume"`
	Competition string   `json:"competition"`
	Difficulty  *float64 `json:"difficulty"` // 0-100, nil when unknown
	CPC         *float64 `json:"cpc"`
	Seed        string   `json:"seed"` // originating seed phrase
}

// Identity returns the dedup identity of the candidate: lowercased,
// whitespace-trimmed keyword text. Two candidates with equal identity are the
// same keyword regardless of casing.
func (k KeywordCandidate) Identity() string {
	return NormalizeKeyword(k.Keyword)
}

// NormalizeKeyword lowercases and trims a keyword for identity comparison.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// NormalizeCompetition maps free-form provider competition labels onto the
// known buckets.
func NormalizeCompetition(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CompetitionLow:
		return CompetitionLow
	case CompetitionMedium, "med":
		return CompetitionMedium
	case CompetitionHigh:
		return CompetitionHigh
	default:
		return CompetitionUnknown
	}
}

// CandidatePool is the deduplicated union of all candidates fetched for one
// research request, in seed order. First-seen-wins: the first seed to return
// a given keyword supplies its metrics.
type CandidatePool struct {
	Candidates  []KeywordCandidate `json:"candidates"`
	RawCount    int                `json:"raw_count"`    // total fetched before dedup
	SeedsUsed   int                `json:"seeds_used"`   // seeds that returned data
	SeedsFailed int                `json:"seeds_failed"` // seeds dropped after retry

	seen map[string]struct{}
}

// Contains reports whether the pool already holds a candidate with the given
// normalized identity.
func (p *CandidatePool) Contains(identity string) bool {
	_, ok := p.seen[identity]
	return ok
}

// Add appends the candidate if its identity is not yet present and reports
// whether it was added.
func (p *CandidatePool) Add(c KeywordCandidate) bool {
	id := c.Identity()
	if p.Contains(id) {
		return false
	}
	if p.seen == nil {
		p.seen = make(map[string]struct{})
	}
	p.seen[id] = struct{}{}
	p.Candidates = append(p.Candidates, c)
	return true
}

// Size returns the number of deduplicated candidates.
func (p *CandidatePool) Size() int { return len(p.Candidates) }
