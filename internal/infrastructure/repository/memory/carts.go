package memory

import (
	"context"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// CartRepository is an in-memory ports.CartRepository.
type CartRepository struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

// NewCartRepository creates an empty cart store.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*domain.Cart)}
}

var _ ports.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) GetCart(_ context.Context, customerID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[customerID]
	if !ok {
		return nil, nil
	}
	return cloneCart(c), nil
}

func (r *CartRepository) SaveCart(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.CustomerID] = cloneCart(cart)
	return nil
}

func (r *CartRepository) ClearCart(_ context.Context, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, customerID)
	return nil
}
