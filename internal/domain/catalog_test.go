package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() map[string]*Product {
	return map[string]*Product{
		"guppy": {ID: "guppy", Kind: KindFish, Name: "Guppy", Price: dec("50"), WeightKg: decPtr("0.2"),
			StockQuantity: 10, MinimumOrderQuantity: 2, Available: true},
		"molly": {ID: "molly", Kind: KindFish, Name: "Molly", Price: dec("80"),
			StockQuantity: 3, MinimumOrderQuantity: 1, Available: true},
		"filter": {ID: "filter", Kind: KindAccessory, Name: "Filter", Price: dec("999"), WeightKg: decPtr("1.5"),
			StockQuantity: 0, MinimumOrderQuantity: 1, Available: true},
	}
}

func TestProductValidate(t *testing.T) {
	p := &Product{Kind: KindFish, Name: "Betta", Price: dec("120")}
	var verr *ValidationError
	require.ErrorAs(t, p.Validate(), &verr)
	assert.Equal(t, "breed_id", verr.Field)

	p.BreedID = "b1"
	require.NoError(t, p.Validate())
	assert.Equal(t, 1, p.MinimumOrderQuantity)
}

func TestComboPricingAndVisibility(t *testing.T) {
	products := catalogFixture()
	combo := &Combo{
		Title:  "Starter",
		Active: true,
		Items:  []ComboItem{{ProductID: "guppy", Quantity: 4}, {ProductID: "molly", Quantity: 2}},
	}
	assert.True(t, combo.Price(products).Equal(dec("360")))
	assert.True(t, combo.Weight(products).Equal(dec("0.8")))
	assert.True(t, combo.Visible(products))
	assert.False(t, combo.AvailableFor(products, 2), "molly stock is 3")

	combo.BundlePrice = decPtr("299")
	assert.True(t, combo.Price(products).Equal(dec("299")))

	combo.Items = append(combo.Items, ComboItem{ProductID: "filter", Quantity: 1})
	assert.False(t, combo.Visible(products), "filter is out of stock")
}

func TestLimitedOfferSchedule(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	start, end := now.Add(-time.Hour), now.Add(90*time.Second)
	o := &LimitedOffer{Active: true, StartTime: &start, EndTime: &end}
	assert.True(t, o.IsCurrent(now))
	assert.Equal(t, int64(90), o.RemainingSeconds(now))
	assert.False(t, o.IsCurrent(now.Add(time.Hour)))
	assert.Equal(t, int64(0), o.RemainingSeconds(now.Add(time.Hour)))

	open := &LimitedOffer{Active: true, StartTime: &start}
	assert.True(t, open.IsCurrent(now.Add(100*time.Hour)))
	open.Active = false
	assert.False(t, open.IsCurrent(now))
}

func TestPriceCart(t *testing.T) {
	products := catalogFixture()
	combos := map[string]*Combo{
		"starter": {ID: "starter", Title: "Starter", Active: true, BundlePrice: decPtr("199.99"),
			Items: []ComboItem{{ProductID: "guppy", Quantity: 2}}},
	}
	cart := &Cart{CustomerID: "c1", Lines: []*CartLine{
		{ID: "l1", Kind: LineFish, ProductID: "guppy", Quantity: 3},
		{ID: "l2", Kind: LineCombo, ComboID: "starter", Quantity: 2},
		{ID: "l3", Kind: LineAccessory, ProductID: "gone", Quantity: 1},
	}}

	priced := PriceCart(cart, products, combos)
	require.Len(t, priced.Lines, 2)
	require.Len(t, priced.Missing, 1)
	assert.Equal(t, "l3", priced.Missing[0].ID)
	assert.True(t, priced.Totals.Subtotal.Equal(dec("549.98")))
	assert.True(t, priced.Totals.TotalWeightKg.Equal(dec("1.4")))
	assert.Equal(t, 5, priced.Totals.ItemCount)
	assert.Equal(t, 6, cart.ItemCount())
}

func TestCartLineLookup(t *testing.T) {
	cart := &Cart{Lines: []*CartLine{{ID: "a", Kind: LineFish, ProductID: "guppy", Quantity: 1}}}
	assert.NotNil(t, cart.LineFor(&CartLine{Kind: LineFish, ProductID: "guppy"}))
	assert.Nil(t, cart.LineFor(&CartLine{Kind: LinePlant, ProductID: "guppy"}))
	assert.True(t, cart.Remove("a"))
	assert.False(t, cart.Remove("a"))
	assert.True(t, cart.IsEmpty())
}
