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

// MongoBlogRepository implements BlogRepository using MongoDB
type MongoBlogRepository struct {
	collection *mongo.Collection
}

var _ ports.BlogRepository = (*MongoBlogRepository)(nil)

// NewMongoBlogRepository creates a new MongoDB blog repository
func NewMongoBlogRepository(db *mongo.Database) *MongoBlogRepository {
	return &MongoBlogRepository{collection: db.Collection(blogPostsCollection)}
}

// Drafts have no publishedAt, which sorts them last in descending order.
var blogOrder = options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}})

func (r *MongoBlogRepository) CreatePost(ctx context.Context, post *domain.BlogPost) error {
	return insert(ctx, r.collection, entity.MongoBlogPostDocFromDomain(post), "blog post")
}

func (r *MongoBlogRepository) GetPost(ctx context.Context, id string) (*domain.BlogPost, error) {
	return findOne[entity.MongoBlogPostDoc, domain.BlogPost](ctx, r.collection, bson.M{"_id": id}, "blog post")
}

func (r *MongoBlogRepository) GetPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return findOne[entity.MongoBlogPostDoc, domain.BlogPost](ctx, r.collection, bson.M{"slug": slug}, "blog post")
}

func (r *MongoBlogRepository) UpdatePost(ctx context.Context, post *domain.BlogPost) error {
	return replace(ctx, r.collection, post.ID, entity.MongoBlogPostDocFromDomain(post), "blog post")
}

func (r *MongoBlogRepository) DeletePost(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id, "blog post")
}

func (r *MongoBlogRepository) ListPosts(ctx context.Context, publishedOnly bool) ([]*domain.BlogPost, error) {
	filter := bson.M{}
	if publishedOnly {
		filter["published"] = true
	}
	return findAll[entity.MongoBlogPostDoc, domain.BlogPost](ctx, r.collection, filter, blogOrder, "blog posts")
}

// MongoStockAlertRepository implements StockAlertRepository using MongoDB
type MongoStockAlertRepository struct {
	collection *mongo.Collection
}

var _ ports.StockAlertRepository = (*MongoStockAlertRepository)(nil)

// NewMongoStockAlertRepository creates a new MongoDB stock alert repository
func NewMongoStockAlertRepository(db *mongo.Database) *MongoStockAlertRepository {
	return &MongoStockAlertRepository{collection: db.Collection(stockAlertsCollection)}
}

func (r *MongoStockAlertRepository) CreateAlert(ctx context.Context, alert *domain.StockAlert) error {
	return insert(ctx, r.collection, entity.MongoStockAlertDocFromDomain(alert), "stock alert")
}

func (r *MongoStockAlertRepository) HasUnread(ctx context.Context, productID string, level domain.AlertLevel) (bool, error) {
	filter := bson.M{"productId": productID, "level": string(level), "read": false}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count stock alerts: %w", err)
	}
	return n > 0, nil
}

func (r *MongoStockAlertRepository) ListAlerts(ctx context.Context, unreadOnly bool) ([]*domain.StockAlert, error) {
	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}
	return findAll[entity.MongoStockAlertDoc, domain.StockAlert](ctx, r.collection, filter, newestFirst, "stock alerts")
}

func (r *MongoStockAlertRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark stock alert read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoStockAlertRepository) MarkAllRead(ctx context.Context) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark stock alerts read: %w", err)
	}
	return res.ModifiedCount, nil
}
