package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// StockAlertRepository is an in-memory ports.StockAlertRepository.
type StockAlertRepository struct {
	mu     sync.Mutex
	alerts map[string]*domain.StockAlert
}

// NewStockAlertRepository creates an empty alert store.
func NewStockAlertRepository() *StockAlertRepository {
	return &StockAlertRepository{alerts: make(map[string]*domain.StockAlert)}
}

var _ ports.StockAlertRepository = (*StockAlertRepository)(nil)

func (r *StockAlertRepository) CreateAlert(_ context.Context, alert *domain.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := *alert
	r.alerts[alert.ID] = &a
	return nil
}

func (r *StockAlertRepository) HasUnread(_ context.Context, productID string, level domain.AlertLevel) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ProductID == productID && a.Level == level && !a.Read {
			return true, nil
		}
	}
	return false, nil
}

func (r *StockAlertRepository) ListAlerts(_ context.Context, unreadOnly bool) ([]*domain.StockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.StockAlert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if unreadOnly && a.Read {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *StockAlertRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Read = true
	return nil
}

func (r *StockAlertRepository) MarkAllRead(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.alerts {
		if !a.Read {
			a.Read = true
			n++
		}
	}
	return n, nil
}
