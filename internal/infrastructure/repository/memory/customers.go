package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// CustomerRepository is an in-memory ports.CustomerRepository.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

// NewCustomerRepository creates an empty customer store.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[string]*domain.Customer)}
}

var _ ports.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *CustomerRepository) SaveCustomer(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *customer
	r.customers[c.ID] = &c
	return nil
}

func (r *CustomerRepository) ListCustomers(_ context.Context) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
