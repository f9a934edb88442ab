package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fishy-friend-storefront/internal/application"
	"fishy-friend-storefront/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShopify struct {
	mu       sync.Mutex
	nextID   uint64
	products map[uint64]goshopify.Product
	failSKU  string
	updates  int
	// onCreate runs before a listing is created, outside the lock.
	onCreate func(sku string)
}

func newFakeShopify() *fakeShopify {
	return &fakeShopify{nextID: 1000, products: make(map[uint64]goshopify.Product)}
}

func (f *fakeShopify) GetProduct(_ context.Context, id uint64) (*goshopify.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeShopify) CreateProduct(_ context.Context, p *goshopify.Product) (*goshopify.Product, error) {
	if f.onCreate != nil {
		f.onCreate(p.Variants[0].Sku)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSKU != "" && p.Variants[0].Sku == f.failSKU {
		return nil, errors.New("shopify: 422 unprocessable")
	}
	f.nextID++
	created := *p
	created.Id = f.nextID
	created.Variants[0].Id = f.nextID * 10
	f.products[created.Id] = created
	return &created, nil
}

func (f *fakeShopify) UpdateProduct(_ context.Context, p *goshopify.Product) (*goshopify.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.Id]; !ok {
		return nil, errors.New("shopify: 404 not found")
	}
	f.updates++
	f.products[p.Id] = *p
	return p, nil
}

func TestSyncCatalogCreatesThenUpdates(t *testing.T) {
	f := newFixture(t)
	hidden := &domain.Product{ID: "p-hidden", Kind: domain.KindPlant, Name: "Java Fern", Price: money("90")}
	require.NoError(t, f.catalog.CreateProduct(f.ctx, hidden))

	client := newFakeShopify()
	syncer := application.NewCatalogSyncService(f.catalog, client, zerolog.Nop())

	report, err := syncer.SyncCatalog(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	guppy, err := f.catalog.GetProduct(f.ctx, f.guppy.ID)
	require.NoError(t, err)
	require.NotZero(t, guppy.ShopifyProductID)

	listed := client.products[guppy.ShopifyProductID]
	assert.Equal(t, "Fancy Guppy", listed.Title)
	assert.Equal(t, domain.ShopifyVendor, listed.Vendor)
	assert.Equal(t, "Fish", listed.ProductType)
	require.Len(t, listed.Variants, 1)
	assert.Equal(t, "FFA-fish-p-guppy", listed.Variants[0].Sku)
	assert.Equal(t, 10, listed.Variants[0].InventoryQuantity)
	assert.True(t, listed.Variants[0].Price.Equal(money("150")))

	report, err = syncer.SyncCatalog(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 2, client.updates)
	assert.Equal(t, guppy.ShopifyProductID*10, client.products[guppy.ShopifyProductID].Variants[0].Id,
		"the existing variant is updated rather than replaced")
}

func TestSyncCatalogCountsFailures(t *testing.T) {
	f := newFixture(t)
	client := newFakeShopify()
	client.failSKU = domain.ShopifySKU(f.filter)
	syncer := application.NewCatalogSyncService(f.catalog, client, zerolog.Nop())

	report, err := syncer.SyncCatalog(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)

	filter, err := f.catalog.GetProduct(f.ctx, f.filter.ID)
	require.NoError(t, err)
	assert.Zero(t, filter.ShopifyProductID)
}

func TestSyncCatalogRelistsDeletedProduct(t *testing.T) {
	f := newFixture(t)
	guppy, err := f.catalog.GetProduct(f.ctx, f.guppy.ID)
	require.NoError(t, err)
	guppy.ShopifyProductID = 42
	require.NoError(t, f.catalog.UpdateProduct(f.ctx, guppy))

	client := newFakeShopify()
	report, err := application.NewCatalogSyncService(f.catalog, client, zerolog.Nop()).SyncCatalog(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	guppy, err = f.catalog.GetProduct(f.ctx, f.guppy.ID)
	require.NoError(t, err)
	assert.NotEqual(t, uint64(42), guppy.ShopifyProductID)
}

func TestSyncCatalogKeepsStockSoldDuringTheRun(t *testing.T) {
	f := newFixture(t)
	client := newFakeShopify()
	var once sync.Once
	client.onCreate = func(sku string) {
		if sku != domain.ShopifySKU(f.guppy) {
			return
		}
		once.Do(func() {
			f.addToCart(t, f.guppy.ID, 4)
			f.placeOrder(t, domain.MethodUPI)
		})
	}

	report, err := application.NewCatalogSyncService(f.catalog, client, zerolog.Nop()).SyncCatalog(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	guppy, err := f.catalog.GetProduct(f.ctx, f.guppy.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, guppy.StockQuantity)
	assert.NotZero(t, guppy.ShopifyProductID)
}
