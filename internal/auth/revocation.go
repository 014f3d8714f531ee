package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticketdesk/internal/clock"
)

// Revocations remembers logged-out token ids until the tokens would expire anyway.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revokedKeyPrefix = "ticketdesk:revoked:"

type redisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations stores revoked token ids as expiring Redis keys.
func NewRedisRevocations(client *redis.Client) Revocations {
	return &redisRevocations{client: client}
}

func (r *redisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (r *redisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := r.client.Get(ctx, revokedKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// memoryRevocations is the single-process denylist used when Redis is unavailable.
type memoryRevocations struct {
	mu      sync.Mutex
	clock   clock.Clock
	revoked map[string]time.Time
}

// NewMemoryRevocations returns a process-local denylist.
func NewMemoryRevocations(clk clock.Clock) Revocations {
	if clk == nil {
		clk = clock.Real()
	}
	return &memoryRevocations{clock: clk, revoked: make(map[string]time.Time)}
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	m.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenID]
	return ok && m.clock.Now().Before(until), nil
}
