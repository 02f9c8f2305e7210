package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// seedShape is the expected JSON shape of a seed expansion response.
type seedShape struct {
	Seeds []string `json:"seeds"`
}

// ParseSeedList validates a seed expansion response. The expected shape is
// {"seeds": ["...", ...]} with at least one non-empty entry. Anything else
// yields ErrMalformed.
func ParseSeedList(raw string) ([]string, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}

	var shape seedShape
	if err := json.Unmarshal([]byte(payload), &shape); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	seeds := make([]string, 0, len(shape.Seeds))
	for _, s := range shape.Seeds {
		if s = strings.TrimSpace(s); s != "" {
			seeds = append(seeds, s)
		}
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: empty seed list", ErrMalformed)
	}
	return seeds, nil
}

// rankShape is the expected JSON shape of a ranking response.
type rankShape struct {
	Keywords  []string `json:"keywords"`
	Rationale string   `json:"rationale"`
}

// ParseRanking validates a ranking response. The expected shape is
// {"keywords": [...], "rationale": "..."} with at least one keyword.
func ParseRanking(raw string) (Ranking, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return Ranking{}, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}

	var shape rankShape
	if err := json.Unmarshal([]byte(payload), &shape); err != nil {
		return Ranking{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	keywords := make([]string, 0, len(shape.Keywords))
	for _, k := range shape.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return Ranking{}, fmt.Errorf("%w: empty keyword list", ErrMalformed)
	}
	return Ranking{Keywords: keywords, Rationale: strings.TrimSpace(shape.Rationale)}, nil
}

// extractJSON returns the first top-level JSON object in raw, tolerating
// markdown code fences and prose around it. Returns "" when no object is
// present.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
