// Package session provides a Redis-backed session store for deployments
// that run more than one server against the same database.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
)

const keyPrefix = constants.AppName + ":session:"

// RedisStore implements storage.SessionStore on Redis. Keys expire with
// their session, so purging is a no-op.
type RedisStore struct {
	client *redis.Client
}

var _ storage.SessionStore = (*RedisStore)(nil)

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(tokenHash string) string {
	return keyPrefix + tokenHash
}

type record struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrInvalidExpiry is returned for a session that expires before it is created
var ErrInvalidExpiry = errors.New("session expires before it is created")

// CreateSession stores s with a key TTL equal to its lifetime
func (r *RedisStore) CreateSession(ctx context.Context, s models.Session) error {
	ttl := s.ExpiresAt.Sub(s.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: created %s, expires %s", ErrInvalidExpiry, s.CreatedAt.Format(time.RFC3339), s.ExpiresAt.Format(time.RFC3339))
	}

	payload, err := json.Marshal(record{UserID: s.UserID, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, key(s.TokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisStore) GetSession(ctx context.Context, tokenHash string) (models.Session, error) {
	payload, err := r.client.Get(ctx, key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, storage.ErrNotFound
		}
		return models.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return models.Session{
		TokenHash: tokenHash,
		UserID:    rec.UserID,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := r.client.Del(ctx, key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions always reports zero; Redis evicts expired keys itself.
func (r *RedisStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
