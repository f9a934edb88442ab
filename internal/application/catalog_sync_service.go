package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// CatalogSyncService lists the storefront catalog on a Shopify sales channel.
// It depends on ports (interfaces) not concrete implementations
type CatalogSyncService struct {
	catalog ports.CatalogRepository
	client  ports.ShopifyClient
	logger  zerolog.Logger
	now     clock
}

// NewCatalogSyncService creates a new catalog sync service
func NewCatalogSyncService(catalog ports.CatalogRepository, client ports.ShopifyClient, logger zerolog.Logger) *CatalogSyncService {
	return &CatalogSyncService{catalog: catalog, client: client, logger: logger, now: time.Now}
}

var shopifyProductTypes = map[domain.ProductKind]string{
	domain.KindFish:      "Fish",
	domain.KindAccessory: "Accessory",
	domain.KindPlant:     "Plant",
}

// SyncCatalog creates or updates a Shopify product for every available
// product. Failures are counted per product and never abort the run.
func (s *CatalogSyncService) SyncCatalog(ctx context.Context) (*domain.SyncReport, error) {
	started := s.now()
	report := &domain.SyncReport{StartedAt: started}

	products, err := s.catalog.ListProducts(ctx, ports.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !p.Available {
			report.Skipped++
			continue
		}
		created, err := s.syncProduct(ctx, p)
		if err != nil {
			report.Failed++
			s.logger.Error().Err(err).Str("productId", p.ID).Str("sku", domain.ShopifySKU(p)).Msg("Failed to sync product")
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	report.Duration = s.now().Sub(started).Round(time.Millisecond).String()
	s.logger.Info().
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Str("duration", report.Duration).
		Msg("Catalog synced to Shopify")
	return report, nil
}

func (s *CatalogSyncService) syncProduct(ctx context.Context, p *domain.Product) (bool, error) {
	listing := shopifyListing(p)

	if p.ShopifyProductID != 0 {
		existing, err := s.client.GetProduct(ctx, p.ShopifyProductID)
		if err != nil {
			return false, fmt.Errorf("failed to get shopify product: %w", err)
		}
		if existing != nil {
			listing.Id = existing.Id
			if len(existing.Variants) > 0 {
				listing.Variants[0].Id = existing.Variants[0].Id
			}
			if _, err := s.client.UpdateProduct(ctx, listing); err != nil {
				return false, fmt.Errorf("failed to update shopify product: %w", err)
			}
			return false, nil
		}
		s.logger.Warn().Str("productId", p.ID).Uint64("shopifyProductId", p.ShopifyProductID).
			Msg("Shopify product missing, listing it again")
	}

	created, err := s.client.CreateProduct(ctx, listing)
	if err != nil {
		return false, fmt.Errorf("failed to create shopify product: %w", err)
	}
	// p was read at the start of the run; only the listing id is written back.
	if err := s.catalog.SetShopifyProductID(ctx, p.ID, created.Id); err != nil {
		return true, fmt.Errorf("failed to store shopify product id: %w", err)
	}
	p.ShopifyProductID = created.Id
	return true, nil
}

func shopifyListing(p *domain.Product) *goshopify.Product {
	price := p.Price
	weight := p.Weight()
	return &goshopify.Product{
		Title:       p.Name,
		BodyHTML:    p.Description,
		Vendor:      domain.ShopifyVendor,
		ProductType: shopifyProductTypes[p.Kind],
		Status:      "active",
		Variants: []goshopify.Variant{{
			Title:               p.Name,
			Sku:                 domain.ShopifySKU(p),
			Price:               &price,
			InventoryQuantity:   p.StockQuantity,
			InventoryManagement: "shopify",
			Weight:              &weight,
			WeightUnit:          "kg",
		}},
	}
}
