package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Audience restricts who may use a coupon.
type Audience string

const (
	AudienceAll       Audience = "all"
	AudienceFavorites Audience = "favorites"
	AudienceNormal    Audience = "normal"
)

// CouponDisplayTime is the layout used in coupon validity messages.
const CouponDisplayTime = "02 Jan 2006, 03:04 PM"

// MaxCouponSuggestions is how many coupons checkout suggests.
const MaxCouponSuggestions = 5

// CouponReason identifies why a coupon was refused.
type CouponReason string

const (
	CouponInactive      CouponReason = "inactive"
	CouponNotYetValid   CouponReason = "not_yet_valid"
	CouponExpired       CouponReason = "expired"
	CouponUsageExceeded CouponReason = "usage_limit"
	CouponFavoritesOnly CouponReason = "favorites_only"
	CouponNormalOnly    CouponReason = "normal_only"
	CouponMinimumOrder  CouponReason = "minimum_order"
	CouponUnknown       CouponReason = "unknown"
	CouponMissingCode   CouponReason = "missing_code"
)

// CouponError explains why a coupon cannot be applied.
type CouponError struct {
	Reason  CouponReason
	Message string
}

func (e *CouponError) Error() string { return e.Message }

// Coupon is a percentage discount with an optional cap.
type Coupon struct {
	ID                 string           `json:"id"`
	Code               string           `json:"code"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage"`
	MaxDiscountAmount  *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinOrderAmount     decimal.Decimal  `json:"min_order_amount"`
	Audience           Audience         `json:"audience"`
	Active             bool             `json:"active"`
	ShowInSuggestions  bool             `json:"show_in_suggestions"`
	ValidFrom          time.Time        `json:"valid_from"`
	ValidUntil         time.Time        `json:"valid_until"`
	UsageLimit         *int             `json:"usage_limit,omitempty"`
	TimesUsed          int              `json:"times_used"`
	ForceApply         bool             `json:"force_apply"`
	CreatedBy          string           `json:"created_by,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NormalizeCouponCode trims and upper-cases a code as typed by a customer.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the coupon fields and normalises the code.
func (c *Coupon) Validate() error {
	c.Code = NormalizeCouponCode(c.Code)
	if c.Code == "" {
		return NewValidationError("code", "Coupon code is required.")
	}
	if c.DiscountPercentage.IsNegative() || c.DiscountPercentage.GreaterThan(hundred) {
		return NewValidationError("discount_percentage", "Discount percentage must be between 0 and 100.")
	}
	if c.MaxDiscountAmount != nil && c.MaxDiscountAmount.IsNegative() {
		return NewValidationError("max_discount_amount", "Maximum discount cannot be negative.")
	}
	if c.MinOrderAmount.IsNegative() {
		return NewValidationError("min_order_amount", "Minimum order amount cannot be negative.")
	}
	switch c.Audience {
	case AudienceAll, AudienceFavorites, AudienceNormal:
	case "":
		c.Audience = AudienceAll
	default:
		return NewValidationError("audience", "Unknown coupon audience %q.", c.Audience)
	}
	if c.ValidUntil.Before(c.ValidFrom) {
		return NewValidationError("valid_until", "Valid until must be after valid from.")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return NewValidationError("usage_limit", "Usage limit cannot be negative.")
	}
	return nil
}

// Exhausted reports whether the usage limit has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && *c.UsageLimit > 0 && c.TimesUsed >= *c.UsageLimit
}

// IsValid reports whether the coupon is active, in its window and not exhausted.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return false
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return false
	}
	return !c.Exhausted()
}

// AudienceAllows reports whether the customer belongs to the coupon's audience.
func (c *Coupon) AudienceAllows(customer *Customer) bool {
	switch c.Audience {
	case AudienceFavorites:
		return customer.IsFavorite()
	case AudienceNormal:
		return !customer.IsFavorite()
	}
	return true
}

// CanUse reports whether customer may use the coupon now. Force-applied
// coupons skip every check.
func (c *Coupon) CanUse(customer *Customer, now time.Time) bool {
	if c.ForceApply {
		return true
	}
	return c.IsValid(now) && c.AudienceAllows(customer)
}

// Check returns the first reason the coupon cannot be applied to subtotal,
// or nil when it can.
func (c *Coupon) Check(customer *Customer, subtotal decimal.Decimal, now time.Time) error {
	if c.ForceApply {
		return nil
	}
	if !c.Active {
		return &CouponError{Reason: CouponInactive, Message: "This coupon is no longer active"}
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return &CouponError{
			Reason:  CouponNotYetValid,
			Message: "This coupon is not valid yet. Valid from: " + c.ValidFrom.Format(CouponDisplayTime),
		}
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return &CouponError{
			Reason:  CouponExpired,
			Message: "This coupon expired on: " + c.ValidUntil.Format(CouponDisplayTime),
		}
	}
	if c.Exhausted() {
		return &CouponError{Reason: CouponUsageExceeded, Message: "This coupon has reached its usage limit"}
	}
	if c.Audience == AudienceFavorites && !customer.IsFavorite() {
		return &CouponError{Reason: CouponFavoritesOnly, Message: "This coupon is only for favorite customers"}
	}
	if c.Audience == AudienceNormal && customer.IsFavorite() {
		return &CouponError{Reason: CouponNormalOnly, Message: "This coupon is only for normal users"}
	}
	if c.MinOrderAmount.IsPositive() && subtotal.LessThan(c.MinOrderAmount) {
		return &CouponError{
			Reason:  CouponMinimumOrder,
			Message: fmt.Sprintf("Minimum order amount of %s required", FormatRupees(c.MinOrderAmount)),
		}
	}
	return nil
}

// Discount is the amount taken off subtotal: the percentage, capped at the
// maximum discount and at the subtotal itself.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	discount := subtotal.Mul(c.DiscountPercentage).Div(hundred)
	if c.MaxDiscountAmount != nil && discount.GreaterThan(*c.MaxDiscountAmount) {
		discount = *c.MaxDiscountAmount
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return RoundMoney(discount)
}

// SuggestCoupons picks the coupons worth showing at checkout, best first.
func SuggestCoupons(coupons []*Coupon, customer *Customer, subtotal decimal.Decimal, now time.Time) []*Coupon {
	var out []*Coupon
	for _, c := range coupons {
		if !c.ShowInSuggestions || !c.IsValid(now) || !c.AudienceAllows(customer) {
			continue
		}
		if c.MinOrderAmount.GreaterThan(subtotal) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DiscountPercentage.GreaterThan(out[j].DiscountPercentage)
	})
	if len(out) > MaxCouponSuggestions {
		out = out[:MaxCouponSuggestions]
	}
	return out
}
