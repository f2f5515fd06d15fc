package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatistics is the aggregate view returned to the admin dashboard.
type OrderStatistics struct {
	CountsByStatus map[models.OrderStatus]int64 `json:"counts_by_status"`
	TotalOrders    int64                        `json:"total_orders"`
	TotalRevenue   float64                      `json:"total_revenue"`
}

type OrderRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetByCode(ctx context.Context, orderCode string) (*models.Order, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Ownership-scoped reads
	GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Order, int64, error)
	GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Order, int64, error)

	// Status transitions: the update applies only when the order is still in
	// one of fromStatuses; returns false when the guard did not match.
	UpdateStatusIf(ctx context.Context, id primitive.ObjectID, fromStatuses []models.OrderStatus, updates map[string]interface{}) (bool, error)

	// Auto-coupon trigger metrics
	CountQualifyingOrders(ctx context.Context, userID primitive.ObjectID) (int64, error)
	SumPaidAmount(ctx context.Context, userID primitive.ObjectID) (float64, error)

	// Statistics
	GetStatistics(ctx context.Context) (*OrderStatistics, error)
}
