package models

// Expansion strategies for turning a topic into seed phrases.
const (
	StrategyComprehensive   = "comprehensive"
	StrategyCompetitor      = "competitor-focused"
	StrategyProblemSolution = "problem-solution"
	StrategyFeatureBased    = "feature-based"
)

// MaxSeeds caps how many seed phrases one expansion may produce.
const MaxSeeds = 8

// ValidStrategy reports whether s is one of the known expansion strategies.
func ValidStrategy(s string) bool {
	switch s {
	case StrategyComprehensive, StrategyCompetitor, StrategyProblemSolution, StrategyFeatureBased:
		return true
	}
	return false
}

// SeedSet is an ordered list of 1-8 seed phrases produced for one expansion
// request, with the strategy label used to generate them.
type SeedSet struct {
	Seeds    []string `json:"seeds"`
	Strategy string   `json:"strategy"`
}
