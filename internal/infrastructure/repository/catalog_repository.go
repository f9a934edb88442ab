package repository

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/repository/entity"
	"fishy-friend-storefront/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepository implements CatalogRepository using MongoDB
type MongoCatalogRepository struct {
	categories *mongo.Collection
	breeds     *mongo.Collection
	products   *mongo.Collection
	combos     *mongo.Collection
	offers     *mongo.Collection
}

var _ ports.CatalogRepository = (*MongoCatalogRepository)(nil)

// NewMongoCatalogRepository creates a new MongoDB catalog repository
func NewMongoCatalogRepository(db *mongo.Database) *MongoCatalogRepository {
	return &MongoCatalogRepository{
		categories: db.Collection(categoriesCollection),
		breeds:     db.Collection(breedsCollection),
		products:   db.Collection(productsCollection),
		combos:     db.Collection(combosCollection),
		offers:     db.Collection(offersCollection),
	}
}

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// Categories

func (r *MongoCatalogRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	return insert(ctx, r.categories, entity.MongoCategoryDocFromDomain(category), "category")
}

func (r *MongoCatalogRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return findOne[entity.MongoCategoryDoc, domain.Category](ctx, r.categories, bson.M{"_id": id}, "category")
}

func (r *MongoCatalogRepository) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	filter := bson.M{"name": bson.M{"$regex": "^" + quote(name) + "$", "$options": "i"}}
	return findOne[entity.MongoCategoryDoc, domain.Category](ctx, r.categories, filter, "category")
}

func (r *MongoCatalogRepository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	return replace(ctx, r.categories, category.ID, entity.MongoCategoryDocFromDomain(category), "category")
}

func (r *MongoCatalogRepository) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, r.categories, id, "category")
}

func (r *MongoCatalogRepository) ListCategories(ctx context.Context, categoryType domain.CategoryType) ([]*domain.Category, error) {
	filter := bson.M{}
	if categoryType != "" {
		filter["type"] = string(categoryType)
	}
	return findAll[entity.MongoCategoryDoc, domain.Category](ctx, r.categories, filter, byName, "categories")
}

// Breeds

func (r *MongoCatalogRepository) CreateBreed(ctx context.Context, breed *domain.Breed) error {
	return insert(ctx, r.breeds, entity.MongoBreedDocFromDomain(breed), "breed")
}

func (r *MongoCatalogRepository) GetBreed(ctx context.Context, id string) (*domain.Breed, error) {
	return findOne[entity.MongoBreedDoc, domain.Breed](ctx, r.breeds, bson.M{"_id": id}, "breed")
}

func (r *MongoCatalogRepository) DeleteBreed(ctx context.Context, id string) error {
	return deleteByID(ctx, r.breeds, id, "breed")
}

func (r *MongoCatalogRepository) ListBreeds(ctx context.Context, categoryID string) ([]*domain.Breed, error) {
	filter := bson.M{}
	if categoryID != "" {
		filter["categoryId"] = categoryID
	}
	return findAll[entity.MongoBreedDoc, domain.Breed](ctx, r.breeds, filter, byName, "breeds")
}

// Products

func (r *MongoCatalogRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	return insert(ctx, r.products, entity.MongoProductDocFromDomain(product), "product")
}

func (r *MongoCatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return findOne[entity.MongoProductDoc, domain.Product](ctx, r.products, bson.M{"_id": id}, "product")
}

func (r *MongoCatalogRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return replace(ctx, r.products, product.ID, entity.MongoProductDocFromDomain(product), "product")
}

func (r *MongoCatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	return deleteByID(ctx, r.products, id, "product")
}

// ProductListFilter builds the Mongo filter for a product listing.
func ProductListFilter(f ports.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = string(f.Kind)
	}
	if f.CategoryID != "" {
		filter["categoryId"] = f.CategoryID
	}
	if f.BreedID != "" {
		filter["breedId"] = f.BreedID
	}
	if f.FeaturedOnly {
		filter["featured"] = true
	}
	if f.AvailableOnly {
		filter["available"] = true
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsFold(f.Search)},
			bson.M{"description": containsFold(f.Search)},
		}
	}
	return filter
}

func (r *MongoCatalogRepository) ListProducts(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "name", Value: 1}})
	return findAll[entity.MongoProductDoc, domain.Product](ctx, r.products, ProductListFilter(f), opts, "products")
}

func (r *MongoCatalogRepository) GetProductsByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := findAll[entity.MongoProductDoc, domain.Product](ctx, r.products, bson.M{"_id": bson.M{"$in": ids}}, nil, "products")
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *MongoCatalogRepository) CountProductsInCategory(ctx context.Context, categoryID string) (int64, error) {
	n, err := r.products.CountDocuments(ctx, bson.M{"categoryId": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *MongoCatalogRepository) SetShopifyProductID(ctx context.Context, productID string, shopifyID uint64) error {
	return r.setProductField(ctx, productID, "shopifyProductId", int64(shopifyID))
}

func (r *MongoCatalogRepository) SetFeatured(ctx context.Context, productID string, featured bool) error {
	return r.setProductField(ctx, productID, "featured", featured)
}

func (r *MongoCatalogRepository) setProductField(ctx context.Context, productID, field string, value any) error {
	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now()}}
	res, err := r.products.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock applies delta with a single conditional $inc, so concurrent
// checkouts can never drive stock below zero.
func (r *MongoCatalogRepository) AdjustStock(ctx context.Context, productID string, delta int) error {
	filter := bson.M{"_id": productID}
	if delta < 0 {
		filter["stockQuantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"stockQuantity": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := r.products.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	found, err := exists(ctx, r.products, productID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return domain.ErrOutOfStock
}

// Combos

func (r *MongoCatalogRepository) CreateCombo(ctx context.Context, combo *domain.Combo) error {
	return insert(ctx, r.combos, entity.MongoComboDocFromDomain(combo), "combo")
}

func (r *MongoCatalogRepository) GetCombo(ctx context.Context, id string) (*domain.Combo, error) {
	return findOne[entity.MongoComboDoc, domain.Combo](ctx, r.combos, bson.M{"_id": id}, "combo")
}

func (r *MongoCatalogRepository) UpdateCombo(ctx context.Context, combo *domain.Combo) error {
	return replace(ctx, r.combos, combo.ID, entity.MongoComboDocFromDomain(combo), "combo")
}

func (r *MongoCatalogRepository) DeleteCombo(ctx context.Context, id string) error {
	return deleteByID(ctx, r.combos, id, "combo")
}

func (r *MongoCatalogRepository) ListCombos(ctx context.Context, activeOnly bool) ([]*domain.Combo, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return findAll[entity.MongoComboDoc, domain.Combo](ctx, r.combos, filter, newestFirst, "combos")
}

func (r *MongoCatalogRepository) GetCombosByIDs(ctx context.Context, ids []string) (map[string]*domain.Combo, error) {
	out := make(map[string]*domain.Combo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	combos, err := findAll[entity.MongoComboDoc, domain.Combo](ctx, r.combos, bson.M{"_id": bson.M{"$in": ids}}, nil, "combos")
	if err != nil {
		return nil, err
	}
	for _, c := range combos {
		out[c.ID] = c
	}
	return out, nil
}

// Limited offers

func (r *MongoCatalogRepository) CreateOffer(ctx context.Context, offer *domain.LimitedOffer) error {
	return insert(ctx, r.offers, entity.MongoOfferDocFromDomain(offer), "offer")
}

func (r *MongoCatalogRepository) GetOffer(ctx context.Context, id string) (*domain.LimitedOffer, error) {
	return findOne[entity.MongoOfferDoc, domain.LimitedOffer](ctx, r.offers, bson.M{"_id": id}, "offer")
}

func (r *MongoCatalogRepository) UpdateOffer(ctx context.Context, offer *domain.LimitedOffer) error {
	return replace(ctx, r.offers, offer.ID, entity.MongoOfferDocFromDomain(offer), "offer")
}

func (r *MongoCatalogRepository) DeleteOffer(ctx context.Context, id string) error {
	return deleteByID(ctx, r.offers, id, "offer")
}

func (r *MongoCatalogRepository) ListOffers(ctx context.Context, activeOnly bool) ([]*domain.LimitedOffer, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return findAll[entity.MongoOfferDoc, domain.LimitedOffer](ctx, r.offers, filter, newestFirst, "offers")
}
