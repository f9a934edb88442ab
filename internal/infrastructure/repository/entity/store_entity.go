package entity

import (
	"time"

	"fishy-friend-storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoCouponDoc represents a coupon in MongoDB
type MongoCouponDoc struct {
	ID                 string                `bson:"_id"`
	Code               string                `bson:"code"`
	DiscountPercentage primitive.Decimal128  `bson:"discountPercentage"`
	MaxDiscountAmount  *primitive.Decimal128 `bson:"maxDiscountAmount,omitempty"`
	MinOrderAmount     primitive.Decimal128  `bson:"minOrderAmount"`
	Audience           string                `bson:"audience"`
	Active             bool                  `bson:"active"`
	ShowInSuggestions  bool                  `bson:"showInSuggestions"`
	ValidFrom          time.Time             `bson:"validFrom"`
	ValidUntil         time.Time             `bson:"validUntil"`
	UsageLimit         *int                  `bson:"usageLimit,omitempty"`
	TimesUsed          int                   `bson:"timesUsed"`
	ForceApply         bool                  `bson:"forceApply"`
	CreatedBy          string                `bson:"createdBy,omitempty"`
	CreatedAt          time.Time             `bson:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt"`
}

func (d *MongoCouponDoc) ToDomain() *domain.Coupon {
	return &domain.Coupon{
		ID:                 d.ID,
		Code:               d.Code,
		DiscountPercentage: fromDecimal128(d.DiscountPercentage),
		MaxDiscountAmount:  fromDecimal128Ptr(d.MaxDiscountAmount),
		MinOrderAmount:     fromDecimal128(d.MinOrderAmount),
		Audience:           domain.Audience(d.Audience),
		Active:             d.Active,
		ShowInSuggestions:  d.ShowInSuggestions,
		ValidFrom:          d.ValidFrom,
		ValidUntil:         d.ValidUntil,
		UsageLimit:         d.UsageLimit,
		TimesUsed:          d.TimesUsed,
		ForceApply:         d.ForceApply,
		CreatedBy:          d.CreatedBy,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func MongoCouponDocFromDomain(c *domain.Coupon) *MongoCouponDoc {
	return &MongoCouponDoc{
		ID:                 c.ID,
		Code:               c.Code,
		DiscountPercentage: toDecimal128(c.DiscountPercentage),
		MaxDiscountAmount:  toDecimal128Ptr(c.MaxDiscountAmount),
		MinOrderAmount:     toDecimal128(c.MinOrderAmount),
		Audience:           string(c.Audience),
		Active:             c.Active,
		ShowInSuggestions:  c.ShowInSuggestions,
		ValidFrom:          c.ValidFrom,
		ValidUntil:         c.ValidUntil,
		UsageLimit:         c.UsageLimit,
		TimesUsed:          c.TimesUsed,
		ForceApply:         c.ForceApply,
		CreatedBy:          c.CreatedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// MongoCartLineDoc is one cart line.
type MongoCartLineDoc struct {
	ID        string    `bson:"id"`
	Kind      string    `bson:"kind"`
	ProductID string    `bson:"productId,omitempty"`
	ComboID   string    `bson:"comboId,omitempty"`
	Quantity  int       `bson:"quantity"`
	AddedAt   time.Time `bson:"addedAt"`
}

// MongoCartDoc is keyed by customer id.
type MongoCartDoc struct {
	CustomerID string             `bson:"_id"`
	Lines      []MongoCartLineDoc `bson:"lines"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *MongoCartDoc) ToDomain() *domain.Cart {
	lines := make([]*domain.CartLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, &domain.CartLine{
			ID:        l.ID,
			Kind:      domain.LineKind(l.Kind),
			ProductID: l.ProductID,
			ComboID:   l.ComboID,
			Quantity:  l.Quantity,
			AddedAt:   l.AddedAt,
		})
	}
	return &domain.Cart{CustomerID: d.CustomerID, Lines: lines, UpdatedAt: d.UpdatedAt}
}

func MongoCartDocFromDomain(c *domain.Cart) *MongoCartDoc {
	lines := make([]MongoCartLineDoc, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, MongoCartLineDoc{
			ID:        l.ID,
			Kind:      string(l.Kind),
			ProductID: l.ProductID,
			ComboID:   l.ComboID,
			Quantity:  l.Quantity,
			AddedAt:   l.AddedAt,
		})
	}
	return &MongoCartDoc{CustomerID: c.CustomerID, Lines: lines, UpdatedAt: c.UpdatedAt}
}

// MongoReviewDoc represents an order review in MongoDB
type MongoReviewDoc struct {
	ID          string    `bson:"_id"`
	OrderID     string    `bson:"orderId"`
	OrderNumber string    `bson:"orderNumber"`
	CustomerID  string    `bson:"customerId"`
	Rating      int       `bson:"rating"`
	Comment     string    `bson:"comment,omitempty"`
	Approved    bool      `bson:"approved"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *MongoReviewDoc) ToDomain() *domain.Review {
	return &domain.Review{
		ID:          d.ID,
		OrderID:     d.OrderID,
		OrderNumber: d.OrderNumber,
		CustomerID:  d.CustomerID,
		Rating:      d.Rating,
		Comment:     d.Comment,
		Approved:    d.Approved,
		CreatedAt:   d.CreatedAt,
	}
}

func MongoReviewDocFromDomain(r *domain.Review) *MongoReviewDoc {
	return &MongoReviewDoc{
		ID:          r.ID,
		OrderID:     r.OrderID,
		OrderNumber: r.OrderNumber,
		CustomerID:  r.CustomerID,
		Rating:      r.Rating,
		Comment:     r.Comment,
		Approved:    r.Approved,
		CreatedAt:   r.CreatedAt,
	}
}

// MongoCustomerDoc represents a storefront account in MongoDB
type MongoCustomerDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	Phone     string    `bson:"phone,omitempty"`
	Address   string    `bson:"address,omitempty"`
	Role      string    `bson:"role"`
	Favorite  bool      `bson:"favorite"`
	Blocked   bool      `bson:"blocked"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *MongoCustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:        d.ID,
		Email:     d.Email,
		Name:      d.Name,
		Phone:     d.Phone,
		Address:   d.Address,
		Role:      domain.Role(d.Role),
		Favorite:  d.Favorite,
		Blocked:   d.Blocked,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func MongoCustomerDocFromDomain(c *domain.Customer) *MongoCustomerDoc {
	return &MongoCustomerDoc{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Role:      string(c.Role),
		Favorite:  c.Favorite,
		Blocked:   c.Blocked,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ShippingSettingsKey is the id of the single shipping settings document.
const ShippingSettingsKey = "shipping"

// MongoShippingSettingsDoc lives in the settings collection.
type MongoShippingSettingsDoc struct {
	ID                  string               `bson:"_id"`
	HomeState           string               `bson:"homeState"`
	HomeRate            primitive.Decimal128 `bson:"homeRate"`
	DefaultRate         primitive.Decimal128 `bson:"defaultRate"`
	UnserviceableStates []string             `bson:"unserviceableStates"`
	UpdatedAt           time.Time            `bson:"updatedAt"`
}

func (d *MongoShippingSettingsDoc) ToDomain() *domain.ShippingSettings {
	return &domain.ShippingSettings{
		HomeState:           d.HomeState,
		HomeRate:            fromDecimal128(d.HomeRate),
		DefaultRate:         fromDecimal128(d.DefaultRate),
		UnserviceableStates: d.UnserviceableStates,
		UpdatedAt:           d.UpdatedAt,
	}
}

func MongoShippingSettingsDocFromDomain(s *domain.ShippingSettings) *MongoShippingSettingsDoc {
	return &MongoShippingSettingsDoc{
		ID:                  ShippingSettingsKey,
		HomeState:           s.HomeState,
		HomeRate:            toDecimal128(s.HomeRate),
		DefaultRate:         toDecimal128(s.DefaultRate),
		UnserviceableStates: s.UnserviceableStates,
		UpdatedAt:           s.UpdatedAt,
	}
}
