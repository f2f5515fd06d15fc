package services

import (
	"context"
	"testing"
	"time"

	"goshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeCoupon(code string) *models.Coupon {
	return &models.Coupon{
		Code:          code,
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(24 * time.Hour),
		IsActive:      true,
	}
}

func TestValidateAndPricePercentage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	coupon := activeCoupon("SALE20")
	coupon.MaxDiscountAmount = 50000
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	pricing, err := env.couponSvc.ValidateAndPrice(ctx, "sale20", userID, 200000, nil)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, pricing.DiscountAmount)

	// Above the cap the discount is clamped.
	pricing, err = env.couponSvc.ValidateAndPrice(ctx, "SALE20", userID, 1000000, nil)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, pricing.DiscountAmount)
}

func TestValidateAndPriceFixedAmountCappedAtSubtotal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	coupon := activeCoupon("GIAM100K")
	coupon.DiscountType = models.DiscountTypeFixedAmount
	coupon.DiscountValue = 100000
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	pricing, err := env.couponSvc.ValidateAndPrice(ctx, "GIAM100K", userID, 60000, nil)
	require.NoError(t, err)
	assert.Equal(t, 60000.0, pricing.DiscountAmount)
}

func TestValidateAndPriceRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.couponSvc.ValidateAndPrice(ctx, "NOPE", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponNotFound)
	})

	t.Run("inactive", func(t *testing.T) {
		coupon := activeCoupon("OFF")
		coupon.IsActive = false
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "OFF", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("expired", func(t *testing.T) {
		coupon := activeCoupon("OLD")
		coupon.EndDate = time.Now().Add(-time.Minute)
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "OLD", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		coupon := activeCoupon("SOON")
		coupon.StartDate = time.Now().Add(time.Hour)
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "SOON", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("global limit reached", func(t *testing.T) {
		coupon := activeCoupon("LIMITED")
		coupon.UsageLimit = 2
		coupon.UsageCount = 2
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "LIMITED", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponLimitReached)
	})

	t.Run("minimum order value", func(t *testing.T) {
		coupon := activeCoupon("BIGONLY")
		coupon.MinOrderValue = 500000
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "BIGONLY", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponMinOrder)
	})

	t.Run("excluded user", func(t *testing.T) {
		coupon := activeCoupon("NOTYOU")
		coupon.ExcludedUsers = []primitive.ObjectID{userID}
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "NOTYOU", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponNotEligible)
	})

	t.Run("restricted to other users", func(t *testing.T) {
		coupon := activeCoupon("PRIVATE")
		coupon.ApplicableUsers = []primitive.ObjectID{primitive.NewObjectID()}
		require.NoError(t, env.couponRepo.Create(ctx, coupon))

		_, err := env.couponSvc.ValidateAndPrice(ctx, "PRIVATE", userID, 100000, nil)
		assert.ErrorIs(t, err, ErrCouponNotEligible)
	})
}

func TestValidateAndPricePerUserLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	coupon := activeCoupon("ONCE")
	coupon.UsageLimitPerUser = 1
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	require.NoError(t, env.couponSvc.Apply(ctx, coupon.ID, userID, primitive.NewObjectID(), 20000))

	_, err := env.couponSvc.ValidateAndPrice(ctx, "ONCE", userID, 100000, nil)
	assert.ErrorIs(t, err, ErrCouponUserLimit)

	// A different user is unaffected.
	_, err = env.couponSvc.ValidateAndPrice(ctx, "ONCE", primitive.NewObjectID(), 100000, nil)
	assert.NoError(t, err)
}

func TestValidateAndPriceItemRestrictions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	categoryID := primitive.NewObjectID()
	inCategory := env.productRepo.add(&models.Product{
		Name:       "ao-polo",
		CategoryID: categoryID,
		IsActive:   true,
		Variants:   []models.ProductVariant{{Price: 100000, StockQuantity: 5, IsAvailable: true}},
	})
	outOfCategory := env.productRepo.add(&models.Product{
		Name:     "binh-nuoc",
		IsActive: true,
		Variants: []models.ProductVariant{{Price: 50000, StockQuantity: 5, IsAvailable: true}},
	})

	coupon := activeCoupon("FASHION")
	coupon.ApplicableCategories = []primitive.ObjectID{categoryID}
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	matching := []models.OrderItem{{ProductID: inCategory.ID, Quantity: 1}}
	_, err := env.couponSvc.ValidateAndPrice(ctx, "FASHION", userID, 100000, matching)
	assert.NoError(t, err)

	nonMatching := []models.OrderItem{{ProductID: outOfCategory.ID, Quantity: 1}}
	_, err = env.couponSvc.ValidateAndPrice(ctx, "FASHION", userID, 100000, nonMatching)
	assert.ErrorIs(t, err, ErrCouponNotApplicable)
}

func TestApplyAndReverse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	coupon := activeCoupon("ROUNDTRIP")
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	require.NoError(t, env.couponSvc.Apply(ctx, coupon.ID, userID, orderID, 15000))
	assert.Equal(t, 1, env.couponRepo.coupons[coupon.ID].UsageCount)

	require.NoError(t, env.couponSvc.Reverse(ctx, orderID))
	assert.Equal(t, 0, env.couponRepo.coupons[coupon.ID].UsageCount)

	// Reversing an order without a redemption is a no-op.
	require.NoError(t, env.couponSvc.Reverse(ctx, primitive.NewObjectID()))
	assert.Equal(t, 0, env.couponRepo.coupons[coupon.ID].UsageCount)
}

func TestCreateCouponDefaults(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	coupon, err := env.couponSvc.CreateCoupon(ctx, &CreateCouponRequest{
		Code:          "tet2026",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		EndDate:       time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, "TET2026", coupon.Code)
	assert.True(t, coupon.IsActive)
	assert.Equal(t, 1, coupon.UsageLimitPerUser)
	assert.False(t, coupon.StartDate.IsZero())
}
