package mongodb

import (
	"context"
	"fmt"
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

type paymentRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewPaymentRepository(db *mongo.Database, cache services.CacheService) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payments"),
		cache:      cache,
	}
}

// Basic CRUD operations
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	r.invalidateCache(ctx, id)

	return nil
}

// Lookup operations
func (r *paymentRepository) GetByOrderCode(ctx context.Context, orderCode string) (*models.Payment, error) {
	// Try cache first; only terminal payments are cached
	cacheKey := fmt.Sprintf("payment_order_%s", orderCode)
	if r.cache != nil {
		var payment models.Payment
		if err := r.cache.Get(ctx, cacheKey, &payment); err == nil {
			return &payment, nil
		}
	}

	var payment models.Payment
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"order_code": orderCode}, opts).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by order code: %w", err)
	}

	if r.cache != nil && payment.Status.IsTerminal() {
		r.cache.Set(ctx, cacheKey, payment, 30*time.Minute)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by request id: %w", err)
	}

	return &payment, nil
}

// GetOpenPaymentForOrder returns the newest non-failed, non-refunded payment
// for the order. The invariant of at most one open payment per order rests on
// the payment service consulting this before creating a new one.
func (r *paymentRepository) GetOpenPaymentForOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	filter := bson.M{
		"order_id": orderID,
		"status": bson.M{"$in": []models.PaymentStatus{
			models.PaymentStatusPending,
			models.PaymentStatusProcessing,
			models.PaymentStatusCompleted,
		}},
	}

	var payment models.Payment
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := r.collection.FindOne(ctx, filter, opts).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open payment for order: %w", err)
	}

	return &payment, nil
}

// UpdateStatusIf moves the payment only while it is still in one of
// fromStatuses. A replayed gateway callback matches nothing and becomes a
// no-op, which is the idempotency guarantee.
func (r *paymentRepository) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, fromStatuses []models.PaymentStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": bson.M{"$in": fromStatuses}},
		bson.M{"$set": updates},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.MatchedCount > 0 {
		r.invalidateCache(ctx, id)
	}

	return result.MatchedCount > 0, nil
}

func (r *paymentRepository) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	var payments []*models.Payment
	for cursor.Next(ctx) {
		var payment models.Payment
		if err := cursor.Decode(&payment); err != nil {
			return nil, 0, fmt.Errorf("failed to decode payment: %w", err)
		}
		payments = append(payments, &payment)
	}

	return payments, total, nil
}

func (r *paymentRepository) invalidateCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}

	if payment, err := r.GetByID(ctx, id); err == nil && payment != nil {
		r.cache.Delete(ctx, fmt.Sprintf("payment_order_%s", payment.OrderCode))
	}
}
