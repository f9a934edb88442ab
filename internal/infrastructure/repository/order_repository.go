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

// MongoOrderRepository implements OrderRepository using MongoDB
type MongoOrderRepository struct {
	collection *mongo.Collection
}

var _ ports.OrderRepository = (*MongoOrderRepository)(nil)

// NewMongoOrderRepository creates a new MongoDB order repository
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection(ordersCollection)}
}

// CreateOrder relies on the unique orderNumber index; a clash is domain.ErrDuplicate.
func (r *MongoOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return insert(ctx, r.collection, entity.MongoOrderDocFromDomain(order), "order")
}

func (r *MongoOrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return findOne[entity.MongoOrderDoc, domain.Order](ctx, r.collection, bson.M{"_id": id}, "order")
}

func (r *MongoOrderRepository) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return findOne[entity.MongoOrderDoc, domain.Order](ctx, r.collection, bson.M{"orderNumber": number}, "order")
}

func (r *MongoOrderRepository) GetOrderByProviderOrderID(ctx context.Context, provider, providerOrderID string) (*domain.Order, error) {
	filter := bson.M{"paymentProvider": provider, "providerOrderId": providerOrderID}
	return findOne[entity.MongoOrderDoc, domain.Order](ctx, r.collection, filter, "order")
}

// UpdateOrderIf replaces the document only while its status and payment
// status still equal from, so two writers racing on one order cannot both win.
func (r *MongoOrderRepository) UpdateOrderIf(ctx context.Context, order *domain.Order, from domain.OrderState) (bool, error) {
	res, err := r.collection.ReplaceOne(ctx, OrderStateFilter(order.ID, from), entity.MongoOrderDocFromDomain(order))
	if err != nil {
		return false, fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	found, err := exists(ctx, r.collection, order.ID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// OrderStateFilter matches one order in a given state.
func OrderStateFilter(id string, from domain.OrderState) bson.M {
	return bson.M{
		"_id":           id,
		"status":        string(from.Status),
		"paymentStatus": string(from.PaymentStatus),
	}
}

// OrderListFilter builds the Mongo filter for an order listing.
func OrderListFilter(f domain.OrderFilter) bson.M {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.PaymentStatus != "" {
		filter["paymentStatus"] = string(f.PaymentStatus)
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"orderNumber": containsFold(f.Search)},
			bson.M{"phoneNumber": containsFold(f.Search)},
		}
	}
	return filter
}

func (r *MongoOrderRepository) ListOrders(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return findAll[entity.MongoOrderDoc, domain.Order](ctx, r.collection, OrderListFilter(f), opts, "orders")
}

// MongoPaymentEventRepository implements PaymentEventRepository using MongoDB
type MongoPaymentEventRepository struct {
	collection *mongo.Collection
}

var _ ports.PaymentEventRepository = (*MongoPaymentEventRepository)(nil)

// NewMongoPaymentEventRepository creates a new MongoDB payment event log
func NewMongoPaymentEventRepository(db *mongo.Database) *MongoPaymentEventRepository {
	return &MongoPaymentEventRepository{collection: db.Collection(paymentEventsCollection)}
}

// RecordEvent upserts the log entry for a provider event.
func (r *MongoPaymentEventRepository) RecordEvent(ctx context.Context, record *domain.PaymentEventRecord) error {
	doc := entity.MongoPaymentEventDocFromDomain(record)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}
	return nil
}

func (r *MongoPaymentEventRepository) GetEvent(ctx context.Context, provider, eventID string) (*domain.PaymentEventRecord, error) {
	filter := bson.M{"_id": entity.PaymentEventKey(provider, eventID)}
	return findOne[entity.MongoPaymentEventDoc, domain.PaymentEventRecord](ctx, r.collection, filter, "payment event")
}

func (r *MongoPaymentEventRepository) ListEventsForOrder(ctx context.Context, orderID string) ([]*domain.PaymentEventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: 1}})
	return findAll[entity.MongoPaymentEventDoc, domain.PaymentEventRecord](ctx, r.collection, bson.M{"orderId": orderID}, opts, "payment events")
}
