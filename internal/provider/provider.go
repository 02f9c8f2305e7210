// Package provider defines the external keyword metrics API and its HTTP
// client. All lookups must be gated by the shared ratelimit.Governor; the
// client itself does not rate-limit.
package provider

import (
	"context"
	"errors"
)

// Error classification for lookup failures. Transient failures may be
// retried once by the fetcher; fatal failures (bad credentials, malformed
// request) must not be.
var (
	ErrTransient = errors.New("transient provider error")
	ErrFatal     = errors.New("fatal provider error")
)

// RawCandidate is one keyword row as returned by the metrics provider,
// before normalization into a models.KeywordCandidate.
type RawCandidate struct {
	Keyword     string   `json:"keyword"`
	Volume      *int64   `json:"search_volume"`
	Competition string   `json:"competition"`
	Difficulty  *float64 `json:"difficulty"`
	CPC         *float64 `json:"cpc"`
}

// MetricsProvider returns keyword suggestions with metrics for a seed
// phrase. Implementations classify failures by wrapping ErrTransient or
// ErrFatal.
type MetricsProvider interface {
	Lookup(ctx context.Context, seed string, limit int) ([]RawCandidate, error)
}

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
