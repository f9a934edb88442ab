package memory

import (
	"context"
	"sync"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// SessionStore is an in-memory ports.CheckoutSessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.CheckoutSession
	now      func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.CheckoutSession), now: time.Now}
}

var _ ports.CheckoutSessionStore = (*SessionStore)(nil)

func (s *SessionStore) GetSession(_ context.Context, customerID string) (*domain.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[customerID]
	if !ok {
		return nil, nil
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, customerID)
		return nil, nil
	}
	out := *sess
	return &out, nil
}

func (s *SessionStore) SaveSession(_ context.Context, session *domain.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := *session
	s.sessions[sess.CustomerID] = &sess
	return nil
}

func (s *SessionStore) DeleteSession(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, customerID)
	return nil
}

// IdempotencyStore is an in-memory ports.IdempotencyStore.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

// NewIdempotencyStore creates an empty idempotency store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]time.Time), now: time.Now}
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if expires, ok := s.keys[key]; ok && now.Before(expires) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
