package interfaces

import (
	"context"

	"goshop/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)

	// AdjustStock applies delta to the variant's stock. Negative deltas only
	// succeed while enough stock remains (filtered atomic update); a false
	// return means the guard did not match.
	AdjustStock(ctx context.Context, productID, variantID primitive.ObjectID, delta int) (bool, error)
}

type CartRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	ClearByUserID(ctx context.Context, userID primitive.ObjectID) error
}
