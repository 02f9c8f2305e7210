// Package llm wraps the language model used for seed expansion and
// candidate ranking. Model output is validated against the expected shape;
// anything that does not parse is reported as ErrMalformed, which callers
// handle with their deterministic fallbacks. No other error handling is
// expected of callers.
package llm

import (
	"context"
	"errors"
)

// ErrMalformed reports model output that does not match the expected shape.
// It is the only signal the fallback branches consume; callers never probe
// raw output themselves.
var ErrMalformed = errors.New("malformed model output")

// Client generates a completion for a system/user prompt pair.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Ranking is the validated shape of a ranking response: an ordered keyword
// list plus a short rationale.
type Ranking struct {
	Keywords  []string `json:"keywords"`
	Rationale string   `json:"rationale"`
}
