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

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) interfaces.ProductRepository {
	return &productRepository{
		collection: db.Collection("products"),
	}
}

func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// AdjustStock applies delta to one variant's stock with a filtered positional
// update. For decrements the filter also requires enough remaining stock, so
// two concurrent checkouts cannot drive the count negative; the loser simply
// does not match.
func (r *productRepository) AdjustStock(ctx context.Context, productID, variantID primitive.ObjectID, delta int) (bool, error) {
	filter := bson.M{
		"_id":          productID,
		"variants._id": variantID,
	}
	if delta < 0 {
		filter["variants"] = bson.M{"$elemMatch": bson.M{
			"_id":            variantID,
			"stock_quantity": bson.M{"$gte": -delta},
		}}
		delete(filter, "variants._id")
	}

	result, err := r.collection.UpdateOne(
		ctx,
		filter,
		bson.M{
			"$inc": bson.M{"variants.$.stock_quantity": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return result.MatchedCount > 0, nil
}
