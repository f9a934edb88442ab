package application_test

import (
	"testing"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsHidesUnavailable(t *testing.T) {
	f := newFixture(t)
	hidden, err := f.catalogSvc.CreateProduct(f.ctx, &domain.Product{
		Kind: domain.KindFish, Name: "Endler Guppy", BreedID: "breed-guppy", CategoryID: "cat-live", Price: money("80"),
	})
	require.NoError(t, err)

	all, err := f.catalogSvc.ListProducts(f.ctx, application.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fish, err := f.catalogSvc.ListProducts(f.ctx, application.ListingFilter{Kind: domain.KindFish})
	require.NoError(t, err)
	require.Len(t, fish, 1)
	assert.Equal(t, f.guppy.ID, fish[0].ID)

	found, err := f.catalogSvc.ListProducts(f.ctx, application.ListingFilter{Search: " sponge "})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, f.filter.ID, found[0].ID)

	_, err = f.catalogSvc.ListProducts(f.ctx, application.ListingFilter{Kind: "coral"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.catalogSvc.GetProduct(f.ctx, hidden.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	staffView, err := f.catalogSvc.GetProduct(f.ctx, hidden.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Endler Guppy", staffView.Name)
}

func TestCreateProductChecksReferences(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalogSvc.CreateProduct(f.ctx, &domain.Product{
		Kind: domain.KindFish, Name: "Molly", BreedID: "breed-molly", Price: money("60"),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "breed_id", verr.Field)

	_, err = f.catalogSvc.CreateProduct(f.ctx, &domain.Product{Kind: domain.KindFish, Name: "Molly", Price: money("60")})
	require.ErrorAs(t, err, &verr, "a fish needs a breed")
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture(t)
	err := f.catalogSvc.DeleteCategory(f.ctx, "cat-live")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	empty, err := f.catalogSvc.CreateCategory(f.ctx, &domain.Category{Name: "Cichlids", Type: domain.CategoryFish})
	require.NoError(t, err)
	require.NoError(t, f.catalogSvc.DeleteCategory(f.ctx, empty.ID))
}

func TestVisibleCombosFollowStock(t *testing.T) {
	f := newFixture(t)
	combo, err := f.catalogSvc.CreateCombo(f.ctx, &domain.Combo{
		Title:  "Starter Kit",
		Active: true,
		Items:  []domain.ComboItem{{ProductID: f.guppy.ID, Quantity: 2}, {ProductID: f.filter.ID}},
	})
	require.NoError(t, err)

	views, err := f.catalogSvc.VisibleCombos(f.ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, combo.ID, views[0].ID)
	assert.Equal(t, "650.00", views[0].Price)
	assert.Equal(t, "1.400", views[0].WeightKg)

	require.NoError(t, f.catalog.AdjustStock(f.ctx, f.filter.ID, -3))
	views, err = f.catalogSvc.VisibleCombos(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.catalogSvc.CreateCombo(f.ctx, &domain.Combo{Title: "Ghost", Items: []domain.ComboItem{{ProductID: "nope", Quantity: 1}}})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCartMergesAndUpdatesLines(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.guppy.ID, 1)
	priced, err := f.cartSvc.AddItem(f.ctx, f.customer, application.AddItemInput{ProductID: f.guppy.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, priced.Lines, 1)
	assert.Equal(t, 3, priced.Lines[0].Line.Quantity)
	assert.True(t, priced.Totals.Subtotal.Equal(money("450")), priced.Totals.Subtotal.String())
	assert.True(t, priced.Totals.TotalWeightKg.Equal(money("1.5")), priced.Totals.TotalWeightKg.String())

	lineID := priced.Lines[0].Line.ID
	priced, err = f.cartSvc.UpdateQuantity(f.ctx, f.customer, lineID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, priced.Totals.ItemCount)

	priced, err = f.cartSvc.UpdateQuantity(f.ctx, f.customer, lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, priced.Lines)

	_, err = f.cartSvc.RemoveItem(f.ctx, f.customer, lineID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartRejectsBadItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.cartSvc.AddItem(f.ctx, f.customer, application.AddItemInput{})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.cartSvc.AddItem(f.ctx, f.customer, application.AddItemInput{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.cartSvc.AddItem(f.ctx, f.customer, application.AddItemInput{ProductID: f.guppy.ID, Quantity: -1})
	assert.ErrorAs(t, err, &verr)

	_, err = f.cartSvc.AddItem(f.ctx, nil, application.AddItemInput{ProductID: f.guppy.ID, Quantity: 1})
	assert.Error(t, err)
}
