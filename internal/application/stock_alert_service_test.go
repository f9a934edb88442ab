package application_test

import (
	"context"
	"errors"
	"testing"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levels(t *testing.T, svc *application.StockAlertService, unreadOnly bool) []domain.AlertLevel {
	t.Helper()
	alerts, err := svc.List(context.Background(), unreadOnly)
	require.NoError(t, err)
	out := make([]domain.AlertLevel, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Level)
	}
	return out
}

func TestStockAlertsFollowStockChanges(t *testing.T) {
	f := newFixture(t)
	svc := application.NewStockAlertService(memory.NewStockAlertRepository(), 0, zerolog.Nop())
	catalog := svc.Watch(f.catalog)

	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, -5))
	assert.Equal(t, []domain.AlertLevel{domain.AlertWarning}, levels(t, svc, false))

	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, -1))
	assert.Len(t, levels(t, svc, false), 1, "already low")

	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, -4))
	assert.ElementsMatch(t, []domain.AlertLevel{domain.AlertWarning, domain.AlertCritical}, levels(t, svc, false))

	// Restock and drop again while the warning is still unread.
	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, 10))
	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, -6))
	assert.Len(t, levels(t, svc, false), 2)

	n, err := svc.MarkAllRead(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, levels(t, svc, true))

	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, 6))
	require.NoError(t, catalog.AdjustStock(f.ctx, f.guppy.ID, -6))
	assert.Equal(t, []domain.AlertLevel{domain.AlertWarning}, levels(t, svc, true))
	assert.Len(t, levels(t, svc, false), 3)
}

func TestStaffStockEditRaisesAlert(t *testing.T) {
	f := newFixture(t)
	svc := application.NewStockAlertService(memory.NewStockAlertRepository(), 0, zerolog.Nop())
	catalogSvc := application.NewCatalogService(svc.Watch(f.catalog), zerolog.Nop())

	edited := *f.filter
	edited.StockQuantity = 0
	_, err := catalogSvc.UpdateProduct(f.ctx, &edited)
	require.NoError(t, err)

	alerts, err := svc.List(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertCritical, alerts[0].Level)
	assert.Equal(t, "Sponge Filter is out of stock", alerts[0].Title)
	assert.Equal(t, f.filter.ID, alerts[0].ProductID)

	require.NoError(t, svc.MarkRead(f.ctx, alerts[0].ID))
	assert.Empty(t, levels(t, svc, true))
	assert.ErrorIs(t, svc.MarkRead(f.ctx, "missing"), domain.ErrNotFound)
}

func TestCheckoutSellingOutRaisesAlert(t *testing.T) {
	f := newFixture(t)
	svc := application.NewStockAlertService(memory.NewStockAlertRepository(), 0, zerolog.Nop())
	f.checkoutSvc = application.NewCheckoutService(f.carts, svc.Watch(f.catalog), f.coupons, f.orders, memory.NewSessionStore(), f.shippingSvc, f.publisher, nil, zerolog.Nop())

	f.addToCart(t, f.filter.ID, 3)
	f.placeOrder(t, domain.MethodUPI)

	assert.Equal(t, 0, f.stock(t, f.filter.ID))
	assert.Equal(t, []domain.AlertLevel{domain.AlertCritical}, levels(t, svc, true))
}

type brokenAlerts struct {
	*memory.StockAlertRepository
}

func (brokenAlerts) CreateAlert(context.Context, *domain.StockAlert) error {
	return errors.New("alerts store unavailable")
}

func TestStockChangeSurvivesAlertFailure(t *testing.T) {
	f := newFixture(t)
	svc := application.NewStockAlertService(brokenAlerts{memory.NewStockAlertRepository()}, 0, zerolog.Nop())

	require.NoError(t, svc.Watch(f.catalog).AdjustStock(f.ctx, f.filter.ID, -3))
	assert.Equal(t, 0, f.stock(t, f.filter.ID))
}

func TestFailedStockChangeRaisesNothing(t *testing.T) {
	f := newFixture(t)
	svc := application.NewStockAlertService(memory.NewStockAlertRepository(), 0, zerolog.Nop())

	err := svc.Watch(f.catalog).AdjustStock(f.ctx, f.filter.ID, -4)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Empty(t, levels(t, svc, false))
}
