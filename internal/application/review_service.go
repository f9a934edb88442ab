package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// ReviewService handles order reviews and their moderation.
type ReviewService struct {
	reviews ports.ReviewRepository
	orders  ports.OrderRepository
	logger  zerolog.Logger
	now     clock
}

// NewReviewService creates a new review service
func NewReviewService(reviews ports.ReviewRepository, orders ports.OrderRepository, logger zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, logger: logger, now: time.Now}
}

// Submit records a customer's review of a delivered order. Each order can
// be reviewed once; reviews wait for staff approval.
func (s *ReviewService) Submit(ctx context.Context, customer *domain.Customer, orderID string, rating int, comment string) (*domain.Review, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.CustomerID != customer.ID {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.OrderDelivered {
		return nil, domain.NewValidationError("order", "You can review an order once it has been delivered.")
	}
	existing, err := s.reviews.GetReviewForOrder(ctx, customer.ID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		return nil, domain.NewValidationError("order", "You have already reviewed this order.")
	}
	review := &domain.Review{
		ID:          newID(),
		OrderID:     order.ID,
		OrderNumber: order.Number,
		CustomerID:  customer.ID,
		Rating:      rating,
		Comment:     comment,
		CreatedAt:   s.now(),
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	s.logger.Info().Str("orderNumber", order.Number).Int("rating", rating).Msg("Review submitted")
	return review, nil
}

// Public lists approved reviews.
func (s *ReviewService) Public(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.reviews.ListReviews(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// All lists every review for moderation.
func (s *ReviewService) All(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.reviews.ListReviews(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Approve publishes a review.
func (s *ReviewService) Approve(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, domain.ErrNotFound
	}
	review.Approved = true
	if err := s.reviews.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

// Reject deletes a review.
func (s *ReviewService) Reject(ctx context.Context, id string) error {
	if err := s.reviews.DeleteReview(ctx, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
