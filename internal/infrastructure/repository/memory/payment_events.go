package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// PaymentEventRepository is an in-memory ports.PaymentEventRepository.
type PaymentEventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.PaymentEventRecord
}

// NewPaymentEventRepository creates an empty event log.
func NewPaymentEventRepository() *PaymentEventRepository {
	return &PaymentEventRepository{events: make(map[string]*domain.PaymentEventRecord)}
}

var _ ports.PaymentEventRepository = (*PaymentEventRepository)(nil)

func eventKey(provider, eventID string) string { return provider + "/" + eventID }

// RecordEvent upserts the record keyed by provider and event id.
func (r *PaymentEventRepository) RecordEvent(_ context.Context, record *domain.PaymentEventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.events[eventKey(rec.Provider, rec.EventID)] = &rec
	return nil
}

func (r *PaymentEventRepository) GetEvent(_ context.Context, provider, eventID string) (*domain.PaymentEventRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.events[eventKey(provider, eventID)]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (r *PaymentEventRepository) ListEventsForOrder(_ context.Context, orderID string) ([]*domain.PaymentEventRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.PaymentEventRecord
	for _, rec := range r.events {
		if rec.OrderID == orderID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, nil
}
