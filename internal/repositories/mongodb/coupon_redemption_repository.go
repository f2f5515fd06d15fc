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

type couponRedemptionRepository struct {
	collection *mongo.Collection
}

func NewCouponRedemptionRepository(db *mongo.Database) interfaces.CouponRedemptionRepository {
	return &couponRedemptionRepository{
		collection: db.Collection("coupon_redemptions"),
	}
}

// Create inserts the redemption marker. The unique (user_id, rule_id) index
// makes a second insert for the same pair fail with a duplicate-key error,
// which callers treat as "rule already fired".
func (r *couponRedemptionRepository) Create(ctx context.Context, redemption *models.UserCouponRedemption) error {
	redemption.ID = primitive.NewObjectID()
	redemption.RedeemedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, redemption)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("redemption already exists: %w", err)
		}
		return fmt.Errorf("failed to create coupon redemption: %w", err)
	}

	return nil
}

func (r *couponRedemptionRepository) Exists(ctx context.Context, userID, ruleID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"rule_id": ruleID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check coupon redemption: %w", err)
	}

	return count > 0, nil
}
