package domain

import "time"

// CheckoutSession remembers per-customer checkout state between requests.
type CheckoutSession struct {
	CustomerID string    `json:"customer_id"`
	CouponCode string    `json:"coupon_code"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *CheckoutSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
