package repository

import (
	"context"
	"fmt"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/infrastructure/repository/entity"
	"fishy-friend-storefront/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCouponRepository implements CouponRepository using MongoDB
type MongoCouponRepository struct {
	collection *mongo.Collection
}

var _ ports.CouponRepository = (*MongoCouponRepository)(nil)

// NewMongoCouponRepository creates a new MongoDB coupon repository
func NewMongoCouponRepository(db *mongo.Database) *MongoCouponRepository {
	return &MongoCouponRepository{collection: db.Collection(couponsCollection)}
}

func (r *MongoCouponRepository) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	return insert(ctx, r.collection, entity.MongoCouponDocFromDomain(coupon), "coupon")
}

func (r *MongoCouponRepository) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	return findOne[entity.MongoCouponDoc, domain.Coupon](ctx, r.collection, bson.M{"_id": id}, "coupon")
}

func (r *MongoCouponRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return findOne[entity.MongoCouponDoc, domain.Coupon](ctx, r.collection, bson.M{"code": code}, "coupon")
}

func (r *MongoCouponRepository) UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	return replace(ctx, r.collection, coupon.ID, entity.MongoCouponDocFromDomain(coupon), "coupon")
}

func (r *MongoCouponRepository) DeleteCoupon(ctx context.Context, id string) error {
	return deleteByID(ctx, r.collection, id, "coupon")
}

func (r *MongoCouponRepository) ListCoupons(ctx context.Context) ([]*domain.Coupon, error) {
	return findAll[entity.MongoCouponDoc, domain.Coupon](ctx, r.collection, bson.M{}, newestFirst, "coupons")
}

// ReserveUsage increments timesUsed only while it is below usageLimit, in a
// single update, so two checkouts cannot both take the last use.
func (r *MongoCouponRepository) ReserveUsage(ctx context.Context, couponID string) (bool, error) {
	filter := bson.M{
		"_id": couponID,
		"$or": bson.A{
			bson.M{"usageLimit": bson.M{"$exists": false}},
			bson.M{"usageLimit": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$timesUsed", "$usageLimit"}}},
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"timesUsed": 1}})
	if err != nil {
		return false, fmt.Errorf("failed to reserve coupon usage: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	found, err := exists(ctx, r.collection, couponID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrNotFound
	}
	return false, nil
}

func (r *MongoCouponRepository) ReleaseUsage(ctx context.Context, couponID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": couponID, "timesUsed": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"timesUsed": -1}},
	)
	if err != nil {
		return fmt.Errorf("failed to release coupon usage: %w", err)
	}
	if res.MatchedCount == 0 {
		found, err := exists(ctx, r.collection, couponID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound
		}
	}
	return nil
}
