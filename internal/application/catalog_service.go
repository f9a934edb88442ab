package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// LowStockThreshold marks products shown in the dashboard's low-stock list.
const LowStockThreshold = domain.DefaultLowStockThreshold

// CatalogService manages the product catalog for staff and serves the
// storefront listings.
type CatalogService struct {
	repo   ports.CatalogRepository
	logger zerolog.Logger
	now    clock
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo ports.CatalogRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger, now: time.Now}
}

// ListingFilter is what the storefront can filter products by.
type ListingFilter struct {
	Kind       domain.ProductKind
	CategoryID string
	BreedID    string
	Search     string
	Featured   bool
}

// ListProducts returns available products for the storefront.
func (s *CatalogService) ListProducts(ctx context.Context, f ListingFilter) ([]*domain.Product, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, domain.NewValidationError("kind", "Unknown product kind %q.", f.Kind)
	}
	products, err := s.repo.ListProducts(ctx, ports.ProductFilter{
		Kind:          f.Kind,
		CategoryID:    f.CategoryID,
		BreedID:       f.BreedID,
		Search:        strings.TrimSpace(f.Search),
		FeaturedOnly:  f.Featured,
		AvailableOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one product. Unavailable products are hidden from
// customers but visible to staff.
func (s *CatalogService) GetProduct(ctx context.Context, id string, includeHidden bool) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || (!product.Available && !includeHidden) {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// AllProducts lists every product for the back office.
func (s *CatalogService) AllProducts(ctx context.Context, kind domain.ProductKind, search string) ([]*domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, ports.ProductFilter{Kind: kind, Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListCategories lists categories, optionally of one type.
func (s *CatalogService) ListCategories(ctx context.Context, t domain.CategoryType) ([]*domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListBreeds lists breeds, optionally of one category.
func (s *CatalogService) ListBreeds(ctx context.Context, categoryID string) ([]*domain.Breed, error) {
	breeds, err := s.repo.ListBreeds(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breeds: %w", err)
	}
	return breeds, nil
}

// ComboView is a combo with its computed price for the storefront.
type ComboView struct {
	*domain.Combo
	Price    string `json:"price"`
	WeightKg string `json:"total_weight_kg"`
}

// VisibleCombos lists combos customers can currently buy.
func (s *CatalogService) VisibleCombos(ctx context.Context) ([]ComboView, error) {
	combos, err := s.repo.ListCombos(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list combos: %w", err)
	}
	var ids []string
	for _, c := range combos {
		ids = append(ids, c.ProductIDs()...)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load combo products: %w", err)
	}
	out := make([]ComboView, 0, len(combos))
	for _, c := range combos {
		if !c.Visible(products) {
			continue
		}
		out = append(out, ComboView{
			Combo:    c,
			Price:    c.Price(products).StringFixed(2),
			WeightKg: c.Weight(products).StringFixed(3),
		})
	}
	return out, nil
}

// OfferView is a limited offer with its countdown.
type OfferView struct {
	*domain.LimitedOffer
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// CurrentOffers lists offers running right now.
func (s *CatalogService) CurrentOffers(ctx context.Context) ([]OfferView, error) {
	offers, err := s.repo.ListOffers(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	now := s.now()
	var out []OfferView
	for _, o := range offers {
		if o.IsCurrent(now) {
			out = append(out, OfferView{LimitedOffer: o, RemainingSeconds: o.RemainingSeconds(now)})
		}
	}
	return out, nil
}

// CreateCategory adds a category with a unique name.
func (s *CatalogService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(category.Name)
	existing, err := s.repo.GetCategoryByName(ctx, category.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		return nil, domain.NewValidationError("name", "A category named %q already exists.", category.Name)
	}
	category.ID = newID()
	category.CreatedAt = s.now()
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.Info().Str("categoryId", category.ID).Str("name", category.Name).Msg("Created category")
	return category, nil
}

// UpdateCategory replaces a category's editable fields.
func (s *CatalogService) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	current, err := s.repo.GetCategory(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	clash, err := s.repo.GetCategoryByName(ctx, strings.TrimSpace(category.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if clash != nil && clash.ID != category.ID {
		return nil, domain.NewValidationError("name", "A category named %q already exists.", category.Name)
	}
	category.CreatedAt = current.CreatedAt
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category that no product uses.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if n > 0 {
		return domain.NewValidationError("category", "Cannot delete a category that still has %d products.", n)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// CreateBreed adds a breed to an existing category.
func (s *CatalogService) CreateBreed(ctx context.Context, breed *domain.Breed) (*domain.Breed, error) {
	breed.Name = strings.TrimSpace(breed.Name)
	if breed.Name == "" {
		return nil, domain.NewValidationError("name", "Breed name is required.")
	}
	category, err := s.repo.GetCategory(ctx, breed.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, domain.NewValidationError("category_id", "Unknown category.")
	}
	breed.ID = newID()
	breed.CreatedAt = s.now()
	if err := s.repo.CreateBreed(ctx, breed); err != nil {
		return nil, fmt.Errorf("failed to create breed: %w", err)
	}
	return breed, nil
}

// DeleteBreed removes a breed.
func (s *CatalogService) DeleteBreed(ctx context.Context, id string) error {
	if err := s.repo.DeleteBreed(ctx, id); err != nil {
		return fmt.Errorf("failed to delete breed: %w", err)
	}
	return nil
}

func (s *CatalogService) checkProductRefs(ctx context.Context, p *domain.Product) error {
	if p.CategoryID != "" {
		category, err := s.repo.GetCategory(ctx, p.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if category == nil {
			return domain.NewValidationError("category_id", "Unknown category.")
		}
	}
	if p.BreedID != "" {
		breed, err := s.repo.GetBreed(ctx, p.BreedID)
		if err != nil {
			return fmt.Errorf("failed to get breed: %w", err)
		}
		if breed == nil {
			return domain.NewValidationError("breed_id", "Unknown breed.")
		}
	}
	return nil
}

// CreateProduct adds a fish, accessory or plant.
func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProductRefs(ctx, product); err != nil {
		return nil, err
	}
	now := s.now()
	product.ID = newID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info().Str("productId", product.ID).Str("kind", string(product.Kind)).Msg("Created product")
	return product, nil
}

// UpdateProduct replaces a product's editable fields.
func (s *CatalogService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	current, err := s.repo.GetProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkProductRefs(ctx, product); err != nil {
		return nil, err
	}
	product.CreatedAt = current.CreatedAt
	product.ShopifyProductID = current.ShopifyProductID
	product.UpdatedAt = s.now()
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// ToggleFeatured flips the featured flag.
func (s *CatalogService) ToggleFeatured(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}
	product.Featured = !product.Featured
	if err := s.repo.SetFeatured(ctx, id, product.Featured); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// LowStock lists products with fewer than LowStockThreshold units.
func (s *CatalogService) LowStock(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, ports.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	var out []*domain.Product
	for _, p := range products {
		if p.StockQuantity < LowStockThreshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) checkComboItems(ctx context.Context, combo *domain.Combo) error {
	products, err := s.repo.GetProductsByIDs(ctx, combo.ProductIDs())
	if err != nil {
		return fmt.Errorf("failed to load combo products: %w", err)
	}
	for _, item := range combo.Items {
		if _, ok := products[item.ProductID]; !ok {
			return domain.NewValidationError("items", "Unknown product %s.", item.ProductID)
		}
	}
	return nil
}

// CreateCombo adds a combo offer.
func (s *CatalogService) CreateCombo(ctx context.Context, combo *domain.Combo) (*domain.Combo, error) {
	if err := combo.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkComboItems(ctx, combo); err != nil {
		return nil, err
	}
	now := s.now()
	combo.ID = newID()
	combo.CreatedAt = now
	combo.UpdatedAt = now
	if err := s.repo.CreateCombo(ctx, combo); err != nil {
		return nil, fmt.Errorf("failed to create combo: %w", err)
	}
	return combo, nil
}

// UpdateCombo replaces a combo's editable fields.
func (s *CatalogService) UpdateCombo(ctx context.Context, combo *domain.Combo) (*domain.Combo, error) {
	current, err := s.repo.GetCombo(ctx, combo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get combo: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := combo.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkComboItems(ctx, combo); err != nil {
		return nil, err
	}
	combo.CreatedAt = current.CreatedAt
	combo.UpdatedAt = s.now()
	if err := s.repo.UpdateCombo(ctx, combo); err != nil {
		return nil, fmt.Errorf("failed to update combo: %w", err)
	}
	return combo, nil
}

// DeleteCombo removes a combo.
func (s *CatalogService) DeleteCombo(ctx context.Context, id string) error {
	if err := s.repo.DeleteCombo(ctx, id); err != nil {
		return fmt.Errorf("failed to delete combo: %w", err)
	}
	return nil
}

// AllCombos lists every combo for the back office.
func (s *CatalogService) AllCombos(ctx context.Context) ([]*domain.Combo, error) {
	combos, err := s.repo.ListCombos(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list combos: %w", err)
	}
	return combos, nil
}

// CreateOffer adds a limited offer banner.
func (s *CatalogService) CreateOffer(ctx context.Context, offer *domain.LimitedOffer) (*domain.LimitedOffer, error) {
	if err := offer.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	offer.ID = newID()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return offer, nil
}

// UpdateOffer replaces an offer's editable fields.
func (s *CatalogService) UpdateOffer(ctx context.Context, offer *domain.LimitedOffer) (*domain.LimitedOffer, error) {
	current, err := s.repo.GetOffer(ctx, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if err := offer.Validate(); err != nil {
		return nil, err
	}
	offer.CreatedAt = current.CreatedAt
	offer.UpdatedAt = s.now()
	if err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}
	return offer, nil
}

// DeleteOffer removes an offer.
func (s *CatalogService) DeleteOffer(ctx context.Context, id string) error {
	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

// AllOffers lists every offer for the back office.
func (s *CatalogService) AllOffers(ctx context.Context) ([]*domain.LimitedOffer, error) {
	offers, err := s.repo.ListOffers(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}
