// Package session keeps server-side login sessions in Redis. Clients only
// ever hold the opaque session token; the identity it maps to stays on the
// server and expires with the key.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophPayroll/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a token is unknown or its session has expired.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "sess:"

// RedisStore stores sessions as JSON blobs under sess:<token> with a TTL.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisStore creates a session store that keeps each session for ttl.
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// TTL returns how long new sessions live.
func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

// Create issues a new random token bound to id.
func (s *RedisStore) Create(ctx context.Context, id models.Identity) (string, error) {
	payload, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	token := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get returns the identity bound to token.
func (s *RedisStore) Get(ctx context.Context, token string) (models.Identity, error) {
	var id models.Identity
	if token == "" {
		return id, ErrNotFound
	}

	raw, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return id, ErrNotFound
	}
	if err != nil {
		return id, fmt.Errorf("load session: %w", err)
	}

	if err := json.Unmarshal(raw, &id); err != nil {
		return id, fmt.Errorf("decode session: %w", err)
	}
	return id, nil
}

// Delete removes the session. Deleting an unknown token is not an error.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
