package mongodb

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type couponUsageRepository struct {
	collection *mongo.Collection
}

func NewCouponUsageRepository(db *mongo.Database) interfaces.CouponUsageRepository {
	return &couponUsageRepository{
		collection: db.Collection("coupon_usages"),
	}
}

func (r *couponUsageRepository) Create(ctx context.Context, usage *models.UserCouponUsage) error {
	usage.ID = primitive.NewObjectID()
	usage.UsedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, usage)
	if err != nil {
		return fmt.Errorf("failed to create coupon usage: %w", err)
	}

	return nil
}

func (r *couponUsageRepository) CountByUserAndCoupon(ctx context.Context, userID, couponID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"coupon_id": couponID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usages: %w", err)
	}

	return count, nil
}

func (r *couponUsageRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.UserCouponUsage, error) {
	var usage models.UserCouponUsage
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&usage)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon usage by order: %w", err)
	}

	return &usage, nil
}

func (r *couponUsageRepository) DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return fmt.Errorf("failed to delete coupon usage: %w", err)
	}

	return nil
}
