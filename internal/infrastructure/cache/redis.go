// Package cache holds the Redis-backed stores: webhook idempotency keys and
// checkout sessions.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "storefront:idempotency:"
	sessionPrefix     = "storefront:checkout:"

	// SessionTTL is how long an applied coupon is remembered.
	SessionTTL = 24 * time.Hour
)

// NewRedisClient connects to the Redis server at url and checks it answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// IdempotencyStore claims keys with SET NX so that concurrent deliveries of
// the same webhook event race on a single key.
type IdempotencyStore struct {
	client redis.Cmdable
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// SessionStore keeps checkout sessions as JSON values that expire on their own.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ ports.CheckoutSessionStore = (*SessionStore)(nil)

func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client, ttl: SessionTTL}
}

func (s *SessionStore) GetSession(ctx context.Context, customerID string) (*domain.CheckoutSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+customerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	var session domain.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) SaveSession(ctx context.Context, session *domain.CheckoutSession) error {
	ttl := s.ttl
	if !session.ExpiresAt.IsZero() {
		ttl = time.Until(session.ExpiresAt)
		if ttl <= 0 {
			return s.DeleteSession(ctx, session.CustomerID)
		}
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, sessionPrefix+session.CustomerID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, customerID string) error {
	if err := s.client.Del(ctx, sessionPrefix+customerID).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout session: %w", err)
	}
	return nil
}
