package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductVariant is a purchasable configuration with its own price and stock.
type ProductVariant struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SKU           string             `json:"sku" bson:"sku"`
	Name          string             `json:"name" bson:"name"`
	Price         float64            `json:"price" bson:"price" validate:"required"`
	StockQuantity int                `json:"stock_quantity" bson:"stock_quantity" default:"0"`
	IsAvailable   bool               `json:"is_available" bson:"is_available" default:"true"`
}

type Product struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name" validate:"required"`
	Image      string             `json:"image" bson:"image"`
	CategoryID primitive.ObjectID `json:"category_id" bson:"category_id"`
	BrandID    primitive.ObjectID `json:"brand_id" bson:"brand_id"`
	Variants   []ProductVariant   `json:"variants" bson:"variants" validate:"required,min=1,dive"`
	IsActive   bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Variant returns the embedded variant with the given id.
func (p *Product) Variant(variantID primitive.ObjectID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}
