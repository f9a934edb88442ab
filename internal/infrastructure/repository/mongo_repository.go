// Package repository implements the storage ports on MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"fishy-friend-storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	categoriesCollection    = "categories"
	breedsCollection        = "breeds"
	productsCollection      = "products"
	combosCollection        = "combos"
	offersCollection        = "limited_offers"
	couponsCollection       = "coupons"
	cartsCollection         = "carts"
	ordersCollection        = "orders"
	paymentEventsCollection = "payment_events"
	reviewsCollection       = "reviews"
	customersCollection     = "customers"
	settingsCollection      = "settings"
	blogPostsCollection     = "blog_posts"
	stockAlertsCollection   = "stock_alerts"
)

// MongoRepositories bundles every MongoDB repository on one database.
type MongoRepositories struct {
	db            *mongo.Database
	Catalog       *MongoCatalogRepository
	Coupons       *MongoCouponRepository
	Carts         *MongoCartRepository
	Orders        *MongoOrderRepository
	PaymentEvents *MongoPaymentEventRepository
	Reviews       *MongoReviewRepository
	Customers     *MongoCustomerRepository
	Shipping      *MongoShippingSettingsRepository
	Blog          *MongoBlogRepository
	StockAlerts   *MongoStockAlertRepository
}

// NewMongoRepositories creates the MongoDB repositories
func NewMongoRepositories(db *mongo.Database) *MongoRepositories {
	return &MongoRepositories{
		db:            db,
		Catalog:       NewMongoCatalogRepository(db),
		Coupons:       NewMongoCouponRepository(db),
		Carts:         NewMongoCartRepository(db),
		Orders:        NewMongoOrderRepository(db),
		PaymentEvents: NewMongoPaymentEventRepository(db),
		Reviews:       NewMongoReviewRepository(db),
		Customers:     NewMongoCustomerRepository(db),
		Shipping:      NewMongoShippingSettingsRepository(db),
		Blog:          NewMongoBlogRepository(db),
		StockAlerts:   NewMongoStockAlertRepository(db),
	}
}

// EnsureIndexes creates the indexes the repositories rely on for lookups
// and for uniqueness of codes, names and order numbers.
func (r *MongoRepositories) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		breedsCollection: {
			{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "name", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "displayOrder", Value: 1}, {Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		},
		couponsCollection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentProvider", Value: 1}, {Key: "providerOrderId", Value: 1}}},
		},
		paymentEventsCollection: {
			{Keys: bson.D{{Key: "orderId", Value: 1}, {Key: "receivedAt", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		blogPostsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "published", Value: 1}, {Key: "publishedAt", Value: -1}}},
		},
		stockAlertsCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "level", Value: 1}, {Key: "read", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// domainDoc is implemented by every entity document.
type domainDoc[T any] interface {
	ToDomain() *T
}

// findOne decodes a single document, returning (nil, nil) when none matches.
func findOne[D any, T any, PD interface {
	*D
	domainDoc[T]
}](ctx context.Context, coll *mongo.Collection, filter any, what string) (*T, error) {
	var doc D
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return PD(&doc).ToDomain(), nil
}

// findAll decodes every document matching filter.
func findAll[D any, T any, PD interface {
	*D
	domainDoc[T]
}](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, what string) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	for cursor.Next(ctx) {
		var doc D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", what, err)
		}
		out = append(out, PD(&doc).ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc any, what string) error {
	_, err := coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", what, err)
	}
	return nil
}

// replace overwrites an existing document; a missing id is domain.ErrNotFound.
func replace(ctx context.Context, coll *mongo.Collection, id string, doc any, what string) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string, what string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count documents: %w", err)
	}
	return n > 0, nil
}

func quote(s string) string { return regexp.QuoteMeta(s) }

// containsFold matches s anywhere in the field, ignoring case.
func containsFold(s string) bson.M {
	return bson.M{"$regex": quote(s), "$options": "i"}
}
