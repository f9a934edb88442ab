package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// OrderRepository is an in-memory ports.OrderRepository.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepository creates an empty order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order)}
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == order.Number {
			return domain.ErrDuplicate
		}
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) GetOrderByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.Number == number {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *OrderRepository) GetOrderByProviderOrderID(_ context.Context, provider, providerOrderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.PaymentProvider == provider && o.ProviderOrderID == providerOrderID {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *OrderRepository) UpdateOrderIf(_ context.Context, order *domain.Order, from domain.OrderState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if stored.State() != from {
		return false, nil
	}
	r.orders[order.ID] = cloneOrder(order)
	return true, nil
}

func (r *OrderRepository) ListOrders(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		switch {
		case filter.CustomerID != "" && o.CustomerID != filter.CustomerID,
			filter.Status != "" && o.Status != filter.Status,
			filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus,
			filter.Search != "" && !containsFold(o.Number, filter.Search) && !containsFold(o.PhoneNumber, filter.Search):
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
