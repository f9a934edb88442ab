package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"
)

// CatalogRepository is an in-memory ports.CatalogRepository.
type CatalogRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
	breeds     map[string]*domain.Breed
	products   map[string]*domain.Product
	combos     map[string]*domain.Combo
	offers     map[string]*domain.LimitedOffer
}

// NewCatalogRepository creates an empty catalog.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		categories: make(map[string]*domain.Category),
		breeds:     make(map[string]*domain.Breed),
		products:   make(map[string]*domain.Product),
		combos:     make(map[string]*domain.Combo),
		offers:     make(map[string]*domain.LimitedOffer),
	}
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) CreateCategory(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return domain.ErrDuplicate
		}
	}
	c := *category
	r.categories[c.ID] = &c
	return nil
}

func (r *CatalogRepository) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *CatalogRepository) GetCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *CatalogRepository) UpdateCategory(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *category
	r.categories[c.ID] = &c
	return nil
}

func (r *CatalogRepository) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *CatalogRepository) ListCategories(_ context.Context, categoryType domain.CategoryType) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if categoryType != "" && c.Type != categoryType {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CatalogRepository) CreateBreed(_ context.Context, breed *domain.Breed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := *breed
	r.breeds[b.ID] = &b
	return nil
}

func (r *CatalogRepository) GetBreed(_ context.Context, id string) (*domain.Breed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breeds[id]
	if !ok {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (r *CatalogRepository) DeleteBreed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.breeds[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.breeds, id)
	return nil
}

func (r *CatalogRepository) ListBreeds(_ context.Context, categoryID string) ([]*domain.Breed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Breed, 0, len(r.breeds))
	for _, b := range r.breeds {
		if categoryID != "" && b.CategoryID != categoryID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CatalogRepository) CreateProduct(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *CatalogRepository) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *CatalogRepository) UpdateProduct(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	r.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *CatalogRepository) SetShopifyProductID(_ context.Context, productID string, shopifyID uint64) error {
	return r.updateProduct(productID, func(p *domain.Product) { p.ShopifyProductID = shopifyID })
}

func (r *CatalogRepository) SetFeatured(_ context.Context, productID string, featured bool) error {
	return r.updateProduct(productID, func(p *domain.Product) { p.Featured = featured })
}

func (r *CatalogRepository) updateProduct(id string, change func(*domain.Product)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	change(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (r *CatalogRepository) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *CatalogRepository) ListProducts(_ context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		switch {
		case filter.Kind != "" && p.Kind != filter.Kind,
			filter.CategoryID != "" && p.CategoryID != filter.CategoryID,
			filter.BreedID != "" && p.BreedID != filter.BreedID,
			filter.FeaturedOnly && !p.Featured,
			filter.AvailableOnly && !p.Available,
			filter.Search != "" && !containsFold(p.Name, filter.Search) && !containsFold(p.Description, filter.Search):
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *CatalogRepository) GetProductsByIDs(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}
	return out, nil
}

func (r *CatalogRepository) CountProductsInCategory(_ context.Context, categoryID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *CatalogRepository) AdjustStock(_ context.Context, productID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.StockQuantity+delta < 0 {
		return domain.ErrOutOfStock
	}
	p.StockQuantity += delta
	return nil
}

func (r *CatalogRepository) CreateCombo(_ context.Context, combo *domain.Combo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combos[combo.ID] = cloneCombo(combo)
	return nil
}

func (r *CatalogRepository) GetCombo(_ context.Context, id string) (*domain.Combo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.combos[id]
	if !ok {
		return nil, nil
	}
	return cloneCombo(c), nil
}

func (r *CatalogRepository) UpdateCombo(_ context.Context, combo *domain.Combo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.combos[combo.ID]; !ok {
		return domain.ErrNotFound
	}
	r.combos[combo.ID] = cloneCombo(combo)
	return nil
}

func (r *CatalogRepository) DeleteCombo(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.combos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.combos, id)
	return nil
}

func (r *CatalogRepository) ListCombos(_ context.Context, activeOnly bool) ([]*domain.Combo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Combo, 0, len(r.combos))
	for _, c := range r.combos {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, cloneCombo(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CatalogRepository) GetCombosByIDs(_ context.Context, ids []string) (map[string]*domain.Combo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*domain.Combo, len(ids))
	for _, id := range ids {
		if c, ok := r.combos[id]; ok {
			out[id] = cloneCombo(c)
		}
	}
	return out, nil
}

func (r *CatalogRepository) CreateOffer(_ context.Context, offer *domain.LimitedOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := *offer
	r.offers[o.ID] = &o
	return nil
}

func (r *CatalogRepository) GetOffer(_ context.Context, id string) (*domain.LimitedOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.offers[id]
	if !ok {
		return nil, nil
	}
	out := *o
	return &out, nil
}

func (r *CatalogRepository) UpdateOffer(_ context.Context, offer *domain.LimitedOffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[offer.ID]; !ok {
		return domain.ErrNotFound
	}
	o := *offer
	r.offers[o.ID] = &o
	return nil
}

func (r *CatalogRepository) DeleteOffer(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.offers, id)
	return nil
}

func (r *CatalogRepository) ListOffers(_ context.Context, activeOnly bool) ([]*domain.LimitedOffer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.LimitedOffer, 0, len(r.offers))
	for _, o := range r.offers {
		if activeOnly && !o.Active {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
