package history

import (
	"context"
	"sync"
	"time"

	"seoscout/internal/models"
)

// MemoryStore keeps conversation state in process memory. Used in
// development and tests; the jobs sweeper prunes idle conversations so the
// map does not grow without bound.
type MemoryStore struct {
	ttl time.Duration

	mu            sync.Mutex
	conversations map[string]*memoryConversation
}

type memoryConversation struct {
	shown      map[string]struct{}
	pool       *models.CandidatePool
	lastActive time.Time
}

// NewMemoryStore creates an in-memory store. ttl governs when PruneIdle
// discards a conversation.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:           ttl,
		conversations: make(map[string]*memoryConversation),
	}
}

func (s *MemoryStore) conversation(id string) *memoryConversation {
	c, ok := s.conversations[id]
	if !ok {
		c = &memoryConversation{shown: make(map[string]struct{})}
		s.conversations[id] = c
	}
	c.lastActive = time.Now()
	return c
}

// Shown implements Store.
func (s *MemoryStore) Shown(_ context.Context, conversationID string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return map[string]struct{}{}, nil
	}
	c.lastActive = time.Now()

	out := make(map[string]struct{}, len(c.shown))
	for k := range c.shown {
		out[k] = struct{}{}
	}
	return out, nil
}

// AppendShown implements Store.
func (s *MemoryStore) AppendShown(_ context.Context, conversationID string, keywords []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conversation(conversationID)
	for _, k := range normalizeAll(keywords) {
		c.shown[k] = struct{}{}
	}
	return nil
}

// SavePool implements Store.
func (s *MemoryStore) SavePool(_ context.Context, conversationID string, pool *models.CandidatePool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversation(conversationID).pool = pool
	return nil
}

// Pool implements Store.
func (s *MemoryStore) Pool(_ context.Context, conversationID string) (*models.CandidatePool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok || c.pool == nil {
		return nil, ErrNoPool
	}
	c.lastActive = time.Now()
	return c.pool, nil
}

// PruneIdle discards conversations idle longer than the store TTL and
// returns how many were removed.
func (s *MemoryStore) PruneIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, c := range s.conversations {
		if c.lastActive.Before(cutoff) {
			delete(s.conversations, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of conversations currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}
