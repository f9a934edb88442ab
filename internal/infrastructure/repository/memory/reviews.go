package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// ReviewRepository is an in-memory ports.ReviewRepository.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
}

// NewReviewRepository creates an empty review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: make(map[string]*domain.Review)}
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

func (r *ReviewRepository) CreateReview(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.CustomerID == review.CustomerID && rv.OrderID == review.OrderID {
			return domain.ErrDuplicate
		}
	}
	rv := *review
	r.reviews[rv.ID] = &rv
	return nil
}

func (r *ReviewRepository) GetReview(_ context.Context, id string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.reviews[id]
	if !ok {
		return nil, nil
	}
	out := *rv
	return &out, nil
}

func (r *ReviewRepository) GetReviewForOrder(_ context.Context, customerID, orderID string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rv := range r.reviews {
		if rv.CustomerID == customerID && rv.OrderID == orderID {
			out := *rv
			return &out, nil
		}
	}
	return nil, nil
}

func (r *ReviewRepository) UpdateReview(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return domain.ErrNotFound
	}
	rv := *review
	r.reviews[rv.ID] = &rv
	return nil
}

func (r *ReviewRepository) DeleteReview(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *ReviewRepository) ListReviews(_ context.Context, approvedOnly bool) ([]*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		if approvedOnly && !rv.Approved {
			continue
		}
		cp := *rv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
