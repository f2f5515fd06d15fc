package mongodb

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) interfaces.OrderRepository {
	return &orderRepository{
		collection: db.Collection("orders"),
	}
}

// Basic CRUD operations
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) GetByCode(ctx context.Context, orderCode string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"order_code": orderCode}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order by code: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// Ownership-scoped reads
func (r *orderRepository) GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order for user: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	return r.findOrders(ctx, bson.M{"user_id": userID}, params)
}

func (r *orderRepository) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	return r.findOrders(ctx, bson.M{}, params)
}

func (r *orderRepository) findOrders(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, 0, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, &order)
	}

	return orders, total, nil
}

// UpdateStatusIf applies updates only while the order status is still one of
// fromStatuses. MatchedCount tells the caller whether the guard held, which is
// the only concurrency control between competing transitions.
func (r *orderRepository) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, fromStatuses []models.OrderStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": bson.M{"$in": fromStatuses}},
		bson.M{"$set": updates},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return result.MatchedCount > 0, nil
}

// Auto-coupon trigger metrics

// CountQualifyingOrders counts orders that count toward auto-coupon
// milestones: paid online orders plus delivered COD orders.
func (r *orderRepository) CountQualifyingOrders(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"user_id": userID,
		"$or": []bson.M{
			{"payment_status": models.OrderPaymentStatusPaid},
			{"status": models.OrderStatusDelivered, "payment_method": models.PaymentMethodCOD},
		},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count qualifying orders: %w", err)
	}

	return count, nil
}

func (r *orderRepository) SumPaidAmount(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":        userID,
			"payment_status": models.OrderPaymentStatusPaid,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum paid amount: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode paid amount: %w", err)
		}
	}

	return result.Total, nil
}

// Statistics
func (r *orderRepository) GetStatistics(ctx context.Context) (*interfaces.OrderStatistics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$payment_status", models.OrderPaymentStatusPaid}},
				"$total_amount",
				0,
			}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate order statistics: %w", err)
	}
	defer cursor.Close(ctx)

	stats := &interfaces.OrderStatistics{
		CountsByStatus: make(map[models.OrderStatus]int64),
	}

	for cursor.Next(ctx) {
		var row struct {
			Status  models.OrderStatus `bson:"_id"`
			Count   int64              `bson:"count"`
			Revenue float64            `bson:"revenue"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode order statistics: %w", err)
		}
		stats.CountsByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
		stats.TotalRevenue += row.Revenue
	}

	return stats, nil
}
