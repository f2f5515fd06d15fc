package interfaces

import (
	"context"

	"goshop/internal/models"
	"goshop/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CouponRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Coupon, int64, error)

	// Usage counters
	IncrementUsage(ctx context.Context, id primitive.ObjectID, delta int) error

	// Coupons minted for a specific user by auto rules
	GetByApplicableUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error)
}

type CouponUsageRepository interface {
	Create(ctx context.Context, usage *models.UserCouponUsage) error
	CountByUserAndCoupon(ctx context.Context, userID, couponID primitive.ObjectID) (int64, error)
	GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.UserCouponUsage, error)
	DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) error
}
