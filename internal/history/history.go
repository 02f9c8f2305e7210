// Package history stores per-conversation research state: the set of
// keywords already shown to the user in earlier turns, and the cached
// candidate pool used to serve "show more" requests without re-fetching.
//
// The shown set is append-only and grows for the lifetime of the
// conversation; it is read at the start of each research request and
// appended to by the API layer after a page is presented. The research
// pipeline itself never writes it.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"seoscout/internal/models"
)

// ErrNoPool reports a "show more" request with no cached pool, either
// because no research ran in this conversation or the cache expired.
var ErrNoPool = errors.New("no cached candidate pool for conversation")

// Store is the conversation-scoped research state store.
type Store interface {
	// Shown returns the normalized keywords already presented in the
	// conversation. Missing conversations return an empty set.
	Shown(ctx context.Context, conversationID string) (map[string]struct{}, error)

	// AppendShown adds keywords (normalized before storage) to the
	// conversation's shown set. Appending an already-present keyword is a
	// no-op.
	AppendShown(ctx context.Context, conversationID string, keywords []string) error

	// SavePool caches the filtered candidate pool for "show more" paging,
	// replacing any previous pool for the conversation.
	SavePool(ctx context.Context, conversationID string, pool *models.CandidatePool) error

	// Pool returns the cached pool, or ErrNoPool when none is cached.
	Pool(ctx context.Context, conversationID string) (*models.CandidatePool, error)
}

// NewStore returns a Redis-backed store when a client is supplied, otherwise
// an in-memory store suitable for development and tests. ttl bounds how long
// an idle conversation's state is kept.
func NewStore(client *redis.Client, ttl time.Duration) Store {
	if client == nil {
		return NewMemoryStore(ttl)
	}
	return NewRedisStore(client, ttl)
}

func normalizeAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if n := models.NormalizeKeyword(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}
