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

// MongoShippingSettingsRepository implements ShippingSettingsRepository using MongoDB
// Works with the settings collection, storing the shipping rates as a single document
type MongoShippingSettingsRepository struct {
	collection *mongo.Collection // settings collection
}

var _ ports.ShippingSettingsRepository = (*MongoShippingSettingsRepository)(nil)

// NewMongoShippingSettingsRepository creates a new MongoDB repository
func NewMongoShippingSettingsRepository(db *mongo.Database) *MongoShippingSettingsRepository {
	return &MongoShippingSettingsRepository{
		collection: db.Collection(settingsCollection),
	}
}

// GetShippingSettings returns nil until staff save settings for the first time.
func (r *MongoShippingSettingsRepository) GetShippingSettings(ctx context.Context) (*domain.ShippingSettings, error) {
	filter := bson.M{"_id": entity.ShippingSettingsKey}
	return findOne[entity.MongoShippingSettingsDoc, domain.ShippingSettings](ctx, r.collection, filter, "shipping settings")
}

// SaveShippingSettings saves or updates the shipping settings
func (r *MongoShippingSettingsRepository) SaveShippingSettings(ctx context.Context, settings *domain.ShippingSettings) error {
	doc := entity.MongoShippingSettingsDocFromDomain(settings)
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": entity.ShippingSettingsKey}
	update := bson.M{"$set": doc}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save shipping settings: %w", err)
	}
	return nil
}
