package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roots/admin-console/internal/core/domain"
	"github.com/roots/admin-console/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// SessionRepository stores remote API cookies per console session.
// Key format: console:session:<sid>
type SessionRepository struct {
	client *redis.Client
}

var _ ports.RemoteSessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a SessionRepository wrapping the given Redis client.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Load returns the stored session, or domain.ErrNotFound.
func (r *SessionRepository) Load(ctx context.Context, sid string) (*ports.RemoteSession, error) {
	data, err := r.client.Get(ctx, r.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s ports.RemoteSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load session: decode: %w", err)
	}
	return &s, nil
}

// Save stores s for sid, expiring after ttl (24h when ttl <= 0).
func (r *SessionRepository) Save(ctx context.Context, sid string, s *ports.RemoteSession, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("save session: encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sid), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the stored session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, r.key(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) key(sid string) string {
	return "console:session:" + sid
}
