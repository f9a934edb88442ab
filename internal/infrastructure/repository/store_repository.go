package repository

import (
	"context"
	"fmt"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/repository/entity"
	"fishy-friend-storefront/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartRepository implements CartRepository using MongoDB
type MongoCartRepository struct {
	collection *mongo.Collection
}

var _ ports.CartRepository = (*MongoCartRepository)(nil)

// NewMongoCartRepository creates a new MongoDB cart repository
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection(cartsCollection)}
}

func (r *MongoCartRepository) GetCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	return findOne[entity.MongoCartDoc, domain.Cart](ctx, r.collection, bson.M{"_id": customerID}, "cart")
}

func (r *MongoCartRepository) SaveCart(ctx context.Context, cart *domain.Cart) error {
	doc := entity.MongoCartDocFromDomain(cart)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.CustomerID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *MongoCartRepository) ClearCart(ctx context.Context, customerID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": customerID}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MongoReviewRepository implements ReviewRepository using MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
}

var _ ports.ReviewRepository = (*MongoReviewRepository)(nil)

// NewMongoReviewRepository creates a new MongoDB review repository
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection(reviewsCollection)}
}

func (r *MongoReviewRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	return insert(ctx, r.collection, entity.MongoReviewDocFromDomain(review), "review")
}

func (r *MongoReviewRepository) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return findOne[entity.MongoReviewDoc, domain.Review](ctx, r.collection, bson.M{"_id": id}, "review")
}

func (r *MongoReviewRepository) GetReviewForOrder(ctx context.Context, customerID, orderID string) (*domain.Review, error) {
	filter := bson.M{"customerId": customerID, "orderId": orderID}
	return findOne[entity.MongoReviewDoc, domain.Review](ctx, r.collection, filter, "review")
}

func (r *MongoReviewRepository) UpdateReview(ctx context.Context, review *domain.Review) error {
	return replace(ctx, r.collection, review.ID, entity.MongoReviewDocFromDomain(review), "review")
}

func (r *MongoReviewRepository) DeleteReview(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id, "review")
}

func (r *MongoReviewRepository) ListReviews(ctx context.Context, approvedOnly bool) ([]*domain.Review, error) {
	filter := bson.M{}
	if approvedOnly {
		filter["approved"] = true
	}
	return findAll[entity.MongoReviewDoc, domain.Review](ctx, r.collection, filter, newestFirst, "reviews")
}

// MongoCustomerRepository implements CustomerRepository using MongoDB
type MongoCustomerRepository struct {
	collection *mongo.Collection
}

var _ ports.CustomerRepository = (*MongoCustomerRepository)(nil)

// NewMongoCustomerRepository creates a new MongoDB customer repository
func NewMongoCustomerRepository(db *mongo.Database) *MongoCustomerRepository {
	return &MongoCustomerRepository{collection: db.Collection(customersCollection)}
}

func (r *MongoCustomerRepository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return findOne[entity.MongoCustomerDoc, domain.Customer](ctx, r.collection, bson.M{"_id": id}, "customer")
}

// SaveCustomer saves or updates a customer
func (r *MongoCustomerRepository) SaveCustomer(ctx context.Context, customer *domain.Customer) error {
	doc := entity.MongoCustomerDocFromDomain(customer)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (r *MongoCustomerRepository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return findAll[entity.MongoCustomerDoc, domain.Customer](ctx, r.collection, bson.M{}, newestFirst, "customers")
}
