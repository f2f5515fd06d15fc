package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Lookup operations
	GetByOrderCode(ctx context.Context, orderCode string) (*models.Payment, error)
	GetByRequestID(ctx context.Context, requestID string) (*models.Payment, error)
	GetOpenPaymentForOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error)

	// Status transitions: applies only while the payment is still in one of
	// fromStatuses, which is what makes callback replays no-ops.
	UpdateStatusIf(ctx context.Context, id primitive.ObjectID, fromStatuses []models.PaymentStatus, updates map[string]interface{}) (bool, error)

	GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Payment, int64, error)
}
