package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductKind distinguishes the three kinds of sellable products.
type ProductKind string

const (
	KindFish      ProductKind = "fish"
	KindAccessory ProductKind = "accessory"
	KindPlant     ProductKind = "plant"
)

// Valid reports whether k is a known product kind.
func (k ProductKind) Valid() bool {
	switch k {
	case KindFish, KindAccessory, KindPlant:
		return true
	}
	return false
}

// CategoryType groups categories by what they classify.
type CategoryType string

const (
	CategoryFish      CategoryType = "fish"
	CategoryCombo     CategoryType = "combo"
	CategoryAccessory CategoryType = "accessory"
	CategoryPlant     CategoryType = "plant"
)

// Category of products or combos.
type Category struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        CategoryType `json:"type"`
	ImageURL    string       `json:"image_url,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Validate checks the category fields.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "Category name is required.")
	}
	switch c.Type {
	case CategoryFish, CategoryCombo, CategoryAccessory, CategoryPlant:
	case "":
		c.Type = CategoryFish
	default:
		return NewValidationError("type", "Unknown category type %q.", c.Type)
	}
	return nil
}

// Breed of fish within a category.
type Breed struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"category_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a fish, an accessory or a plant.
type Product struct {
	ID                   string           `json:"id"`
	Kind                 ProductKind      `json:"kind"`
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	CategoryID           string           `json:"category_id,omitempty"`
	BreedID              string           `json:"breed_id,omitempty"`
	Price                decimal.Decimal  `json:"price"`
	SizeInches           *decimal.Decimal `json:"size_inches,omitempty"`
	WeightKg             *decimal.Decimal `json:"weight_kg,omitempty"`
	StockQuantity        int              `json:"stock_quantity"`
	MinimumOrderQuantity int              `json:"minimum_order_quantity"`
	ImageURL             string           `json:"image_url,omitempty"`
	Available            bool             `json:"available"`
	Featured             bool             `json:"featured"`
	DisplayOrder         int              `json:"display_order"`
	ShopifyProductID     uint64           `json:"shopify_product_id,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Validate checks the product fields and fills defaults.
func (p *Product) Validate() error {
	if !p.Kind.Valid() {
		return NewValidationError("kind", "Unknown product kind %q.", p.Kind)
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "Name is required.")
	}
	if p.Price.IsNegative() {
		return NewValidationError("price", "Price cannot be negative.")
	}
	if p.StockQuantity < 0 {
		return NewValidationError("stock_quantity", "Stock cannot be negative.")
	}
	if p.MinimumOrderQuantity == 0 {
		p.MinimumOrderQuantity = 1
	}
	if p.MinimumOrderQuantity < 1 {
		return NewValidationError("minimum_order_quantity", "Minimum order quantity must be at least 1.")
	}
	if p.WeightKg != nil && p.WeightKg.IsNegative() {
		return NewValidationError("weight_kg", "Weight cannot be negative.")
	}
	if p.Kind == KindFish && p.BreedID == "" {
		return NewValidationError("breed_id", "A fish needs a breed.")
	}
	return nil
}

// Sellable reports whether qty units can be sold right now.
func (p *Product) Sellable(qty int) bool {
	return p.Available && qty > 0 && p.StockQuantity >= qty
}

// Weight returns the unit weight, zero when unknown.
func (p *Product) Weight() decimal.Decimal {
	if p.WeightKg == nil {
		return decimal.Zero
	}
	return *p.WeightKg
}

// ComboItem is one product inside a combo bundle.
type ComboItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Combo is a bundle of fish sold together, optionally at a bundle price.
type Combo struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	BundlePrice    *decimal.Decimal `json:"bundle_price,omitempty"`
	CategoryID     string           `json:"category_id,omitempty"`
	Active         bool             `json:"active"`
	ShowOnHomepage bool             `json:"show_on_homepage"`
	ShowAsBanner   bool             `json:"show_as_banner"`
	BannerImageURL string           `json:"banner_image_url,omitempty"`
	WeightKg       *decimal.Decimal `json:"weight_kg,omitempty"`
	Items          []ComboItem      `json:"items"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Validate checks the combo fields.
func (c *Combo) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return NewValidationError("title", "Title is required.")
	}
	if len(c.Items) == 0 {
		return NewValidationError("items", "A combo needs at least one item.")
	}
	seen := make(map[string]bool, len(c.Items))
	for i := range c.Items {
		if c.Items[i].Quantity == 0 {
			c.Items[i].Quantity = 1
		}
		if c.Items[i].Quantity < 0 {
			return NewValidationError("items", "Item quantity must be positive.")
		}
		if seen[c.Items[i].ProductID] {
			return NewValidationError("items", "Product %s appears twice.", c.Items[i].ProductID)
		}
		seen[c.Items[i].ProductID] = true
	}
	if c.BundlePrice != nil && c.BundlePrice.IsNegative() {
		return NewValidationError("bundle_price", "Bundle price cannot be negative.")
	}
	return nil
}

// Price is the bundle price, or the sum of item prices when no bundle price is set.
func (c *Combo) Price(products map[string]*Product) decimal.Decimal {
	if c.BundlePrice != nil {
		return *c.BundlePrice
	}
	total := decimal.Zero
	for _, item := range c.Items {
		if p, ok := products[item.ProductID]; ok {
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return total
}

// Weight is the combo weight, or the sum of item weights when not set.
func (c *Combo) Weight(products map[string]*Product) decimal.Decimal {
	if c.WeightKg != nil {
		return *c.WeightKg
	}
	total := decimal.Zero
	for _, item := range c.Items {
		if p, ok := products[item.ProductID]; ok {
			total = total.Add(p.Weight().Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return total
}

// Visible reports whether customers can buy the combo: it is active and
// every item is available with enough stock for one bundle.
func (c *Combo) Visible(products map[string]*Product) bool {
	return c.AvailableFor(products, 1)
}

// AvailableFor reports whether qty bundles can be sold.
func (c *Combo) AvailableFor(products map[string]*Product, qty int) bool {
	if !c.Active || len(c.Items) == 0 {
		return false
	}
	for _, item := range c.Items {
		p, ok := products[item.ProductID]
		if !ok || !p.Sellable(item.Quantity*qty) {
			return false
		}
	}
	return true
}

// ProductIDs lists the products referenced by the combo.
func (c *Combo) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// LimitedOffer is a time-bound marketing banner.
type LimitedOffer struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	DiscountText   string     `json:"discount_text"`
	ImageURL       string     `json:"image_url,omitempty"`
	BgColor        string     `json:"bg_color,omitempty"`
	ProductID      string     `json:"product_id,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Active         bool       `json:"active"`
	ShowOnHomepage bool       `json:"show_on_homepage"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Validate checks the offer fields.
func (o *LimitedOffer) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return NewValidationError("title", "Title is required.")
	}
	if strings.TrimSpace(o.DiscountText) == "" {
		return NewValidationError("discount_text", "Discount text is required.")
	}
	if o.BgColor != "" && (len(o.BgColor) != 7 || o.BgColor[0] != '#') {
		return NewValidationError("bg_color", "Background colour must look like #1e90ff.")
	}
	if o.StartTime != nil && o.EndTime != nil && o.EndTime.Before(*o.StartTime) {
		return NewValidationError("end_time", "End time must be after start time.")
	}
	return nil
}

// IsCurrent reports whether the offer should be shown at now. An offer
// without a complete schedule is current while active.
func (o *LimitedOffer) IsCurrent(now time.Time) bool {
	if !o.Active {
		return false
	}
	if o.StartTime != nil && o.EndTime != nil {
		return !now.Before(*o.StartTime) && !now.After(*o.EndTime)
	}
	return true
}

// RemainingSeconds is the countdown shown on the banner.
func (o *LimitedOffer) RemainingSeconds(now time.Time) int64 {
	if o.EndTime == nil || !o.EndTime.After(now) {
		return 0
	}
	return int64(o.EndTime.Sub(now).Seconds())
}
