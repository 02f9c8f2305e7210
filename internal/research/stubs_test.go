package research

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"seoscout/internal/provider"
)

// stubLLM returns a fixed output or error for every Generate call.
type stubLLM struct {
	output string
	err    error
}

func (s *stubLLM) Generate(_ context.Context, _, _ string) (string, error) {
	return s.output, s.err
}

// stubProvider serves canned results per seed and counts calls. failures
// holds how many times a seed should fail before succeeding; failWith is the
// error used for those failures.
type stubProvider struct {
	mu       sync.Mutex
	results  map[string][]provider.RawCandidate
	failures map[string]int
	failWith error
	calls    map[string]int
	delay    map[string]time.Duration
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		results:  make(map[string][]provider.RawCandidate),
		failures: make(map[string]int),
		calls:    make(map[string]int),
		delay:    make(map[string]time.Duration),
	}
}

func (s *stubProvider) Lookup(ctx context.Context, seed string, limit int) ([]provider.RawCandidate, error) {
	s.mu.Lock()
	s.calls[seed]++
	remaining := s.failures[seed]
	if remaining > 0 {
		s.failures[seed] = remaining - 1
	}
	delay := s.delay[seed]
	out := s.results[seed]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if remaining > 0 {
		return nil, s.failWith
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubProvider) callCount(seed string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[seed]
}

// stubTracked implements TrackedSource over a fixed list.
type stubTracked struct {
	keywords []string
	err      error
}

func (s *stubTracked) TrackedKeywordTexts(_ context.Context, _ uuid.UUID) ([]string, error) {
	return s.keywords, s.err
}

func vol(n int64) *int64 { return &n }

func kd(d float64) *float64 { return &d }
