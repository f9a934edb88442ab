// Package memory holds map-backed repositories used when STORAGE=memory
// and as fakes in tests. Values are copied on the way in and out so callers
// never share state with the store.
package memory

import (
	"strings"

	"fishy-friend-storefront/internal/domain"
)

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	return &c
}

func cloneCombo(c *domain.Combo) *domain.Combo {
	out := *c
	out.Items = append([]domain.ComboItem(nil), c.Items...)
	return &out
}

func cloneCart(c *domain.Cart) *domain.Cart {
	out := &domain.Cart{CustomerID: c.CustomerID, UpdatedAt: c.UpdatedAt}
	for _, l := range c.Lines {
		line := *l
		out.Lines = append(out.Lines, &line)
	}
	return out
}

func cloneOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.PaidAt != nil {
		at := *o.PaidAt
		out.PaidAt = &at
	}
	return &out
}

func cloneCoupon(c *domain.Coupon) *domain.Coupon {
	out := *c
	if c.UsageLimit != nil {
		limit := *c.UsageLimit
		out.UsageLimit = &limit
	}
	return &out
}

func clonePost(p *domain.BlogPost) *domain.BlogPost {
	out := *p
	if p.PublishedAt != nil {
		at := *p.PublishedAt
		out.PublishedAt = &at
	}
	return &out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
