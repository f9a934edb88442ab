package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// CustomerService looks up customers and lets staff manage them.
type CustomerService struct {
	repo   ports.CustomerRepository
	logger zerolog.Logger
	now    clock
}

// NewCustomerService creates a new customer service
func NewCustomerService(repo ports.CustomerRepository, logger zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, logger: logger, now: time.Now}
}

// Get returns a customer, or domain.ErrNotFound.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

// List returns every customer.
func (s *CustomerService) List(ctx context.Context) ([]*domain.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// Register creates or updates a customer profile.
func (s *CustomerService) Register(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer.Email == "" {
		return nil, domain.NewValidationError("email", "Email is required.")
	}
	now := s.now()
	existing, err := s.repo.GetCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if existing != nil {
		customer.Role = existing.Role
		customer.Favorite = existing.Favorite
		customer.Blocked = existing.Blocked
		customer.CreatedAt = existing.CreatedAt
	} else {
		if customer.ID == "" {
			customer.ID = newID()
		}
		customer.Role = domain.RoleCustomer
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now
	if err := s.repo.SaveCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	return customer, nil
}

// ToggleFavorite flips the favorite flag that unlocks favorites-only coupons.
func (s *CustomerService) ToggleFavorite(ctx context.Context, id string) (*domain.Customer, error) {
	return s.update(ctx, id, func(c *domain.Customer) { c.Favorite = !c.Favorite })
}

// SetBlocked blocks or unblocks a customer.
func (s *CustomerService) SetBlocked(ctx context.Context, id string, blocked bool) (*domain.Customer, error) {
	return s.update(ctx, id, func(c *domain.Customer) { c.Blocked = blocked })
}

func (s *CustomerService) update(ctx context.Context, id string, mutate func(*domain.Customer)) (*domain.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(customer)
	customer.UpdatedAt = s.now()
	if err := s.repo.SaveCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	s.logger.Info().
		Str("customerId", customer.ID).
		Bool("favorite", customer.Favorite).
		Bool("blocked", customer.Blocked).
		Str("by", domain.StaffFromContext(ctx)).
		Msg("Customer updated")
	return customer, nil
}
