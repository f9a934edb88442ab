package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func activeCoupon(now time.Time) *Coupon {
	return &Coupon{
		Code:               "FISH10",
		DiscountPercentage: dec("10"),
		MinOrderAmount:     decimal.Zero,
		Audience:           AudienceAll,
		Active:             true,
		ShowInSuggestions:  true,
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(time.Hour),
	}
}

func TestCouponCheckReasons(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	favorite := &Customer{ID: "c1", Favorite: true}
	normal := &Customer{ID: "c2"}

	tests := []struct {
		name     string
		mutate   func(c *Coupon)
		customer *Customer
		subtotal string
		reason   CouponReason
		message  string
	}{
		{"inactive", func(c *Coupon) { c.Active = false }, normal, "100", CouponInactive, "This coupon is no longer active"},
		{"not yet valid", func(c *Coupon) { c.ValidFrom = now.Add(24 * time.Hour); c.ValidUntil = now.Add(48 * time.Hour) }, normal, "100",
			CouponNotYetValid, "This coupon is not valid yet. Valid from: 02 Mar 2026, 10:00 AM"},
		{"expired", func(c *Coupon) { c.ValidUntil = now.Add(-time.Minute) }, normal, "100", CouponExpired, "This coupon expired on: 01 Mar 2026, 09:59 AM"},
		{"usage limit", func(c *Coupon) { c.UsageLimit = intPtr(3); c.TimesUsed = 3 }, normal, "100", CouponUsageExceeded, "This coupon has reached its usage limit"},
		{"favorites only", func(c *Coupon) { c.Audience = AudienceFavorites }, normal, "100", CouponFavoritesOnly, "This coupon is only for favorite customers"},
		{"favorites only anonymous", func(c *Coupon) { c.Audience = AudienceFavorites }, nil, "100", CouponFavoritesOnly, "This coupon is only for favorite customers"},
		{"normal only", func(c *Coupon) { c.Audience = AudienceNormal }, favorite, "100", CouponNormalOnly, "This coupon is only for normal users"},
		{"minimum order", func(c *Coupon) { c.MinOrderAmount = dec("500") }, normal, "499.99", CouponMinimumOrder, "Minimum order amount of ₹500.00 required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := activeCoupon(now)
			tt.mutate(c)
			err := c.Check(tt.customer, dec(tt.subtotal), now)
			var cerr *CouponError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.reason, cerr.Reason)
			assert.Equal(t, tt.message, cerr.Message)
		})
	}
}

func TestCouponForceApplySkipsChecks(t *testing.T) {
	now := time.Now()
	c := activeCoupon(now)
	c.Active = false
	c.ForceApply = true
	c.MinOrderAmount = dec("10000")
	assert.NoError(t, c.Check(nil, dec("1"), now))
	assert.True(t, c.CanUse(nil, now))
}

func TestCouponDiscount(t *testing.T) {
	c := &Coupon{DiscountPercentage: dec("15")}
	assert.True(t, c.Discount(dec("1000")).Equal(dec("150")))
	assert.True(t, c.Discount(dec("333.33")).Equal(dec("50")), "rounds to paise")

	c.MaxDiscountAmount = decPtr("100")
	assert.True(t, c.Discount(dec("1000")).Equal(dec("100")))

	full := &Coupon{DiscountPercentage: dec("100")}
	assert.True(t, full.Discount(dec("80")).Equal(dec("80")))
	assert.True(t, full.Discount(decimal.Zero).IsZero())
}

func TestCouponExhaustion(t *testing.T) {
	c := &Coupon{}
	assert.False(t, c.Exhausted(), "no limit")
	c.UsageLimit = intPtr(0)
	c.TimesUsed = 50
	assert.False(t, c.Exhausted(), "zero limit means unlimited")
	c.UsageLimit = intPtr(2)
	c.TimesUsed = 1
	assert.False(t, c.Exhausted())
	c.TimesUsed = 2
	assert.True(t, c.Exhausted())
}

func TestSuggestCoupons(t *testing.T) {
	now := time.Now()
	var coupons []*Coupon
	for i, pct := range []string{"5", "20", "10", "25", "15", "30"} {
		c := activeCoupon(now)
		c.Code = "C" + pct
		c.DiscountPercentage = dec(pct)
		if i == 5 {
			c.MinOrderAmount = dec("5000")
		}
		coupons = append(coupons, c)
	}
	hidden := activeCoupon(now)
	hidden.Code = "HIDDEN"
	hidden.DiscountPercentage = dec("90")
	hidden.ShowInSuggestions = false
	favOnly := activeCoupon(now)
	favOnly.Code = "FAV"
	favOnly.DiscountPercentage = dec("50")
	favOnly.Audience = AudienceFavorites
	coupons = append(coupons, hidden, favOnly)

	got := SuggestCoupons(coupons, &Customer{ID: "n"}, dec("1000"), now)
	codes := make([]string, 0, len(got))
	for _, c := range got {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"C25", "C20", "C15", "C10", "C5"}, codes)

	got = SuggestCoupons(coupons, &Customer{ID: "f", Favorite: true}, dec("1000"), now)
	require.NotEmpty(t, got)
	assert.Equal(t, "FAV", got[0].Code)
}

func TestCouponValidateNormalisesCode(t *testing.T) {
	now := time.Now()
	c := activeCoupon(now)
	c.Code = "  summer15 "
	c.Audience = ""
	require.NoError(t, c.Validate())
	assert.Equal(t, "SUMMER15", c.Code)
	assert.Equal(t, AudienceAll, c.Audience)

	c.DiscountPercentage = dec("101")
	assert.Error(t, c.Validate())
}
