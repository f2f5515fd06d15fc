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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type autoCouponRuleRepository struct {
	collection *mongo.Collection
}

func NewAutoCouponRuleRepository(db *mongo.Database) interfaces.AutoCouponRuleRepository {
	return &autoCouponRuleRepository{
		collection: db.Collection("auto_coupon_rules"),
	}
}

func (r *autoCouponRuleRepository) Create(ctx context.Context, rule *models.AutoCouponRule) error {
	rule.ID = primitive.NewObjectID()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create auto coupon rule: %w", err)
	}

	return nil
}

func (r *autoCouponRuleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AutoCouponRule, error) {
	var rule models.AutoCouponRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get auto coupon rule: %w", err)
	}

	return &rule, nil
}

func (r *autoCouponRuleRepository) GetActiveRules(ctx context.Context) ([]*models.AutoCouponRule, error) {
	cursor, err := r.collection.Find(
		ctx,
		bson.M{"is_active": true},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find active rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*models.AutoCouponRule
	for cursor.Next(ctx) {
		var rule models.AutoCouponRule
		if err := cursor.Decode(&rule); err != nil {
			return nil, fmt.Errorf("failed to decode auto coupon rule: %w", err)
		}
		rules = append(rules, &rule)
	}

	return rules, nil
}

func (r *autoCouponRuleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update auto coupon rule: %w", err)
	}

	return nil
}

func (r *autoCouponRuleRepository) IncrementRedemptions(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"redemption_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment rule redemptions: %w", err)
	}

	return nil
}
