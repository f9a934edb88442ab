package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"fishy-friend-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveUsageNeverExceedsLimit(t *testing.T) {
	repo := NewCouponRepository()
	limit := 3
	require.NoError(t, repo.CreateCoupon(context.Background(), &domain.Coupon{ID: "c1", Code: "FISH", UsageLimit: &limit}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ReserveUsage(context.Background(), "c1")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, granted)

	c, err := repo.GetCoupon(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.TimesUsed)
}

func TestAdjustStockRefusesNegative(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()
	require.NoError(t, repo.CreateProduct(ctx, &domain.Product{ID: "p1", Name: "Guppy", StockQuantity: 2}))

	require.NoError(t, repo.AdjustStock(ctx, "p1", -2))
	assert.ErrorIs(t, repo.AdjustStock(ctx, "p1", -1), domain.ErrOutOfStock)
	require.NoError(t, repo.AdjustStock(ctx, "p1", 5))

	p, err := repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockQuantity)
}

func TestUpdateOrderIfLetsOneWriterWin(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	order := &domain.Order{ID: "o1", Number: "ORD000001", Status: domain.OrderPending, PaymentStatus: domain.PaymentPending}
	require.NoError(t, repo.CreateOrder(ctx, order))
	from := order.State()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paid := *order
			paid.PaymentStatus = domain.PaymentPaid
			ok, err := repo.UpdateOrderIf(ctx, &paid, from)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	_, err := repo.UpdateOrderIf(ctx, &domain.Order{ID: "missing"}, from)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFieldUpdatesLeaveStockAlone(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepository()
	require.NoError(t, repo.CreateProduct(ctx, &domain.Product{ID: "p1", Name: "Guppy", StockQuantity: 10}))
	require.NoError(t, repo.AdjustStock(ctx, "p1", -4))

	require.NoError(t, repo.SetShopifyProductID(ctx, "p1", 77))
	require.NoError(t, repo.SetFeatured(ctx, "p1", true))
	assert.ErrorIs(t, repo.SetFeatured(ctx, "nope", true), domain.ErrNotFound)

	p, err := repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockQuantity)
	assert.Equal(t, uint64(77), p.ShopifyProductID)
	assert.True(t, p.Featured)
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository()
	cart := &domain.Cart{CustomerID: "c1", Lines: []*domain.CartLine{{ID: "l1", Quantity: 1}}}
	require.NoError(t, repo.SaveCart(ctx, cart))
	cart.Lines[0].Quantity = 99

	got, err := repo.GetCart(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Lines[0].Quantity)

	missing, err := repo.GetCart(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIdempotencyClaim(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	first, err := store.Claim(ctx, "razorpay/evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)
	again, err := store.Claim(ctx, "razorpay/evt_1", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	now = now.Add(2 * time.Hour)
	expired, err := store.Claim(ctx, "razorpay/evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, expired)

	require.NoError(t, store.Release(ctx, "razorpay/evt_1"))
	released, err := store.Claim(ctx, "razorpay/evt_1", time.Hour)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestListOrdersFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	base := time.Now()
	for i, o := range []*domain.Order{
		{ID: "a", Number: "ORD100001", CustomerID: "c1", Status: domain.OrderPending, PhoneNumber: "9876500000"},
		{ID: "b", Number: "ORD100002", CustomerID: "c1", Status: domain.OrderShipped},
		{ID: "c", Number: "ORD100003", CustomerID: "c2", Status: domain.OrderPending},
	} {
		o.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.CreateOrder(ctx, o))
	}
	assert.ErrorIs(t, repo.CreateOrder(ctx, &domain.Order{ID: "d", Number: "ORD100001"}), domain.ErrDuplicate)

	mine, err := repo.ListOrders(ctx, domain.OrderFilter{CustomerID: "c1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b", mine[0].ID)

	byPhone, err := repo.ListOrders(ctx, domain.OrderFilter{Search: "98765"})
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "a", byPhone[0].ID)
}

func TestBlogSlugIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRepository()
	require.NoError(t, repo.CreatePost(ctx, &domain.BlogPost{ID: "b1", Slug: "plants", Title: "Plants"}))
	assert.ErrorIs(t, repo.CreatePost(ctx, &domain.BlogPost{ID: "b2", Slug: "plants"}), domain.ErrDuplicate)

	require.NoError(t, repo.CreatePost(ctx, &domain.BlogPost{ID: "b2", Slug: "lights"}))
	assert.ErrorIs(t, repo.UpdatePost(ctx, &domain.BlogPost{ID: "b2", Slug: "plants"}), domain.ErrDuplicate)
	assert.NoError(t, repo.UpdatePost(ctx, &domain.BlogPost{ID: "b1", Slug: "plants", Title: "Live plants"}))

	got, err := repo.GetPostBySlug(ctx, "plants")
	require.NoError(t, err)
	assert.Equal(t, "Live plants", got.Title)
}

func TestUnreadAlertsPerLevel(t *testing.T) {
	ctx := context.Background()
	repo := NewStockAlertRepository()
	now := time.Now()
	require.NoError(t, repo.CreateAlert(ctx, &domain.StockAlert{ID: "a1", ProductID: "p1", Level: domain.AlertWarning, CreatedAt: now}))
	require.NoError(t, repo.CreateAlert(ctx, &domain.StockAlert{ID: "a2", ProductID: "p1", Level: domain.AlertCritical, CreatedAt: now.Add(time.Minute)}))

	warned, err := repo.HasUnread(ctx, "p1", domain.AlertWarning)
	require.NoError(t, err)
	assert.True(t, warned)

	require.NoError(t, repo.MarkRead(ctx, "a1"))
	warned, err = repo.HasUnread(ctx, "p1", domain.AlertWarning)
	require.NoError(t, err)
	assert.False(t, warned)

	unread, err := repo.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "a2", unread[0].ID)

	n, err := repo.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.ErrorIs(t, repo.MarkRead(ctx, "missing"), domain.ErrNotFound)
}
