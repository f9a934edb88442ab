package memory

import (
	"context"
	"sort"
	"sync"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// CouponRepository is an in-memory ports.CouponRepository.
type CouponRepository struct {
	mu      sync.Mutex
	coupons map[string]*domain.Coupon
}

// NewCouponRepository creates an empty coupon store.
func NewCouponRepository() *CouponRepository {
	return &CouponRepository{coupons: make(map[string]*domain.Coupon)}
}

var _ ports.CouponRepository = (*CouponRepository)(nil)

func (r *CouponRepository) CreateCoupon(_ context.Context, coupon *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == coupon.Code {
			return domain.ErrDuplicate
		}
	}
	r.coupons[coupon.ID] = cloneCoupon(coupon)
	return nil
}

func (r *CouponRepository) GetCoupon(_ context.Context, id string) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, nil
	}
	return cloneCoupon(c), nil
}

func (r *CouponRepository) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == code {
			return cloneCoupon(c), nil
		}
	}
	return nil, nil
}

func (r *CouponRepository) UpdateCoupon(_ context.Context, coupon *domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[coupon.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, c := range r.coupons {
		if id != coupon.ID && c.Code == coupon.Code {
			return domain.ErrDuplicate
		}
	}
	r.coupons[coupon.ID] = cloneCoupon(coupon)
	return nil
}

func (r *CouponRepository) DeleteCoupon(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.coupons, id)
	return nil
}

func (r *CouponRepository) ListCoupons(_ context.Context) ([]*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, cloneCoupon(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CouponRepository) ReserveUsage(_ context.Context, couponID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.Exhausted() {
		return false, nil
	}
	c.TimesUsed++
	return true, nil
}

func (r *CouponRepository) ReleaseUsage(_ context.Context, couponID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[couponID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.TimesUsed > 0 {
		c.TimesUsed--
	}
	return nil
}
