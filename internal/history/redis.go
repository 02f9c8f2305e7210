package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"seoscout/internal/models"
)

const (
	shownKeyPrefix = "shown:"
	poolKeyPrefix  = "pool:"
)

// RedisStore keeps conversation state in Redis: the shown set as a Redis set
// and the cached pool as a JSON blob. Both keys carry the store TTL,
// refreshed on every write, so idle conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Shown implements Store.
func (s *RedisStore) Shown(ctx context.Context, conversationID string) (map[string]struct{}, error) {
	members, err := s.client.SMembers(ctx, shownKeyPrefix+conversationID).Result()
	if err != nil {
		return nil, fmt.Errorf("read shown set: %w", err)
	}
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

// AppendShown implements Store.
func (s *RedisStore) AppendShown(ctx context.Context, conversationID string, keywords []string) error {
	normalized := normalizeAll(keywords)
	if len(normalized) == 0 {
		return nil
	}
	key := shownKeyPrefix + conversationID

	members := make([]any, len(normalized))
	for i, k := range normalized {
		members[i] = k
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append shown set: %w", err)
	}
	return nil
}

// SavePool implements Store.
func (s *RedisStore) SavePool(ctx context.Context, conversationID string, pool *models.CandidatePool) error {
	val, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	if err := s.client.Set(ctx, poolKeyPrefix+conversationID, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}

// Pool implements Store.
func (s *RedisStore) Pool(ctx context.Context, conversationID string) (*models.CandidatePool, error) {
	val, err := s.client.Get(ctx, poolKeyPrefix+conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoPool
	}
	if err != nil {
		return nil, fmt.Errorf("read pool: %w", err)
	}

	var pool models.CandidatePool
	if err := json.Unmarshal([]byte(val), &pool); err != nil {
		return nil, fmt.Errorf("unmarshal pool: %w", err)
	}
	return &pool, nil
}
