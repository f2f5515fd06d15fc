package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/services"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type couponRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewCouponRepository(db *mongo.Database, cache services.CacheService) interfaces.CouponRepository {
	return &couponRepository{
		collection: db.Collection("coupons"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *couponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.ID = primitive.NewObjectID()
	coupon.CreatedAt = time.Now()
	coupon.UpdatedAt = time.Now()

	// Coupon codes are stored uppercase
	coupon.Code = strings.ToUpper(coupon.Code)

	_, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

func (r *couponRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return &coupon, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.ToUpper(code)

	// Try cache first
	cacheKey := fmt.Sprintf("coupon_code_%s", code)
	if r.cache != nil {
		var coupon models.Coupon
		if err := r.cache.Get(ctx, cacheKey, &coupon); err == nil {
			return &coupon, nil
		}
	}

	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon by code: %w", err)
	}

	// Cache only briefly: usage_count moves under load and the validation
	// path re-reads through this lookup.
	if r.cache != nil && coupon.IsActive {
		r.cache.Set(ctx, cacheKey, coupon, time.Minute)
	}

	return &coupon, nil
}

func (r *couponRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	if code, exists := updates["code"]; exists {
		if codeStr, ok := code.(string); ok {
			updates["code"] = strings.ToUpper(codeStr)
		}
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	r.invalidateCache(ctx, id)

	return nil
}

func (r *couponRepository) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Coupon, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var coupons []*models.Coupon
	for cursor.Next(ctx) {
		var coupon models.Coupon
		if err := cursor.Decode(&coupon); err != nil {
			return nil, 0, fmt.Errorf("failed to decode coupon: %w", err)
		}
		coupons = append(coupons, &coupon)
	}

	return coupons, total, nil
}

// Usage counters
func (r *couponRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"usage_count": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	r.invalidateCache(ctx, id)

	return nil
}

func (r *couponRepository) GetByApplicableUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error) {
	filter := bson.M{
		"applicable_users": userID,
		"is_active":        true,
		"end_date":         bson.M{"$gte": time.Now()},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find user coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var coupons []*models.Coupon
	for cursor.Next(ctx) {
		var coupon models.Coupon
		if err := cursor.Decode(&coupon); err != nil {
			return nil, fmt.Errorf("failed to decode coupon: %w", err)
		}
		coupons = append(coupons, &coupon)
	}

	return coupons, nil
}

func (r *couponRepository) invalidateCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}

	if coupon, err := r.GetByID(ctx, id); err == nil && coupon != nil {
		r.cache.Delete(ctx, fmt.Sprintf("coupon_code_%s", coupon.Code))
	}
}
