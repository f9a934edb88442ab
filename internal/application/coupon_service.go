package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// CouponService is the staff back office for coupons.
type CouponService struct {
	repo   ports.CouponRepository
	logger zerolog.Logger
	now    clock
}

// NewCouponService creates a new coupon service
func NewCouponService(repo ports.CouponRepository, logger zerolog.Logger) *CouponService {
	return &CouponService{repo: repo, logger: logger, now: time.Now}
}

// List returns every coupon.
func (s *CouponService) List(ctx context.Context) ([]*domain.Coupon, error) {
	coupons, err := s.repo.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// Get returns one coupon.
func (s *CouponService) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	coupon, err := s.repo.GetCoupon(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}
	return coupon, nil
}

// Create adds a coupon with a unique code.
func (s *CouponService) Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetCouponByCode(ctx, coupon.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}
	if existing != nil {
		return nil, domain.NewValidationError("code", "Coupon code %s already exists.", coupon.Code)
	}
	now := s.now()
	coupon.ID = newID()
	coupon.TimesUsed = 0
	coupon.CreatedBy = domain.StaffFromContext(ctx)
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	if err := s.repo.CreateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	s.logger.Info().Str("code", coupon.Code).Str("createdBy", coupon.CreatedBy).Msg("Created coupon")
	return coupon, nil
}

// Update replaces a coupon's editable fields. Usage counters are kept.
func (s *CouponService) Update(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	current, err := s.Get(ctx, coupon.ID)
	if err != nil {
		return nil, err
	}
	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	if clash, err := s.repo.GetCouponByCode(ctx, coupon.Code); err != nil {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	} else if clash != nil && clash.ID != coupon.ID {
		return nil, domain.NewValidationError("code", "Coupon code %s already exists.", coupon.Code)
	}
	coupon.TimesUsed = current.TimesUsed
	coupon.CreatedBy = current.CreatedBy
	coupon.CreatedAt = current.CreatedAt
	coupon.UpdatedAt = s.now()
	if err := s.repo.UpdateCoupon(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return coupon, nil
}

// Delete removes a coupon.
func (s *CouponService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteCoupon(ctx, id); err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	return nil
}
