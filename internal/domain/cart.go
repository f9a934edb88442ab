package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineKind is what a cart line refers to.
type LineKind string

const (
	LineFish      LineKind = "fish"
	LineAccessory LineKind = "accessory"
	LinePlant     LineKind = "plant"
	LineCombo     LineKind = "combo"
)

// LineKindFor maps a product kind to its cart line kind.
func LineKindFor(kind ProductKind) LineKind {
	return LineKind(kind)
}

// CartLine is one entry in a customer's cart.
type CartLine struct {
	ID        string    `json:"id"`
	Kind      LineKind  `json:"kind"`
	ProductID string    `json:"product_id,omitempty"`
	ComboID   string    `json:"combo_id,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// ItemKey identifies what the line holds; a cart keeps one line per key.
func (l *CartLine) ItemKey() string {
	if l.Kind == LineCombo {
		return string(l.Kind) + ":" + l.ComboID
	}
	return string(l.Kind) + ":" + l.ProductID
}

// Cart of a single customer.
type Cart struct {
	CustomerID string      `json:"customer_id"`
	Lines      []*CartLine `json:"lines"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Line returns the line with the given id.
func (c *Cart) Line(id string) *CartLine {
	for _, l := range c.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LineFor returns the line holding the same item as other.
func (c *Cart) LineFor(other *CartLine) *CartLine {
	key := other.ItemKey()
	for _, l := range c.Lines {
		if l.ItemKey() == key {
			return l
		}
	}
	return nil
}

// Remove drops the line with the given id and reports whether it existed.
func (c *Cart) Remove(id string) bool {
	for i, l := range c.Lines {
		if l.ID == id {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// ItemCount is the total number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// PricedLine is a cart line resolved against the catalog.
type PricedLine struct {
	Line       *CartLine       `json:"line"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	LineWeight decimal.Decimal `json:"line_weight_kg"`
}

// CartTotals summarises a priced cart.
type CartTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
	ItemCount     int             `json:"item_count"`
}

// PricedCart is the cart with current catalog prices.
type PricedCart struct {
	Lines   []PricedLine `json:"lines"`
	Missing []*CartLine  `json:"missing,omitempty"`
	Totals  CartTotals   `json:"totals"`
}

// PriceCart resolves every line against products and combos. Lines whose
// item no longer exists are reported as missing and excluded from totals.
func PriceCart(cart *Cart, products map[string]*Product, combos map[string]*Combo) *PricedCart {
	priced := &PricedCart{
		Totals: CartTotals{Subtotal: decimal.Zero, TotalWeightKg: decimal.Zero},
	}
	if cart == nil {
		return priced
	}
	for _, line := range cart.Lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		var pl PricedLine
		if line.Kind == LineCombo {
			combo, ok := combos[line.ComboID]
			if !ok {
				priced.Missing = append(priced.Missing, line)
				continue
			}
			unit := combo.Price(products)
			pl = PricedLine{
				Line:       line,
				Name:       combo.Title,
				UnitPrice:  unit,
				LineTotal:  unit.Mul(qty),
				LineWeight: combo.Weight(products).Mul(qty),
			}
		} else {
			product, ok := products[line.ProductID]
			if !ok {
				priced.Missing = append(priced.Missing, line)
				continue
			}
			pl = PricedLine{
				Line:       line,
				Name:       product.Name,
				UnitPrice:  product.Price,
				LineTotal:  product.Price.Mul(qty),
				LineWeight: product.Weight().Mul(qty),
			}
		}
		priced.Lines = append(priced.Lines, pl)
		priced.Totals.Subtotal = priced.Totals.Subtotal.Add(pl.LineTotal)
		priced.Totals.TotalWeightKg = priced.Totals.TotalWeightKg.Add(pl.LineWeight)
		priced.Totals.ItemCount += line.Quantity
	}
	priced.Totals.Subtotal = RoundMoney(priced.Totals.Subtotal)
	return priced
}
