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

func codOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		PaymentMethod: models.PaymentMethodCOD,
		ShippingAddress: models.ShippingAddress{
			FullName: "Nguyen Van A",
			Phone:    "0901234567",
			Street:   "12 Ly Thuong Kiet",
			City:     "Ha Noi",
		},
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("ao-thun", 200000, 10)
	env.seedCart(userID, product, 2)

	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.OrderPaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, 400000.0, order.Subtotal)
	assert.Equal(t, 30000.0, order.ShippingFee)
	assert.Equal(t, 430000.0, order.TotalAmount)
	assert.NotEmpty(t, order.OrderCode)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "ao-thun", order.Items[0].Name)
	assert.Equal(t, 200000.0, order.Items[0].UnitPrice)

	// Stock committed, cart cleared, notification fired.
	assert.Equal(t, 8, env.productRepo.products[product.ID].Variants[0].StockQuantity)
	assert.Nil(t, env.cartRepo.carts[userID])
	assert.Equal(t, 1, env.notifier.confirmations)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.orderSvc.CreateOrder(ctx, primitive.NewObjectID(), codOrderRequest())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCreateOrderFreeShippingOverThreshold(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("giay-sneaker", 300000, 5)
	env.seedCart(userID, product, 2)

	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, 600000.0, order.Subtotal)
	assert.Equal(t, 0.0, order.ShippingFee)
	assert.Equal(t, 600000.0, order.TotalAmount)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("ao-khoac", 150000, 1)
	env.seedCart(userID, product, 3)

	_, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Validation failed before anything mutated.
	assert.Equal(t, 1, env.productRepo.products[product.ID].Variants[0].StockQuantity)
	assert.Empty(t, env.orderRepo.orders)
}

func TestCreateOrderUnavailableVariant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("quan-jean", 250000, 5)
	product.Variants[0].IsAvailable = false
	env.seedCart(userID, product, 1)

	_, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCreateOrderWithCoupon(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("ao-so-mi", 200000, 10)
	env.seedCart(userID, product, 2)

	coupon := &models.Coupon{
		Code:              "SALE10",
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     10,
		MaxDiscountAmount: 30000,
		StartDate:         time.Now().Add(-time.Hour),
		EndDate:           time.Now().Add(time.Hour),
		IsActive:          true,
	}
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	request := codOrderRequest()
	request.CouponCode = "SALE10"

	order, err := env.orderSvc.CreateOrder(ctx, userID, request)
	require.NoError(t, err)

	// 10% of 400000 is 40000, capped at 30000.
	assert.Equal(t, 30000.0, order.DiscountAmount)
	assert.Equal(t, 400000.0+30000.0-30000.0, order.TotalAmount)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)
	assert.Equal(t, "SALE10", order.CouponCode)

	assert.Equal(t, 1, env.couponRepo.coupons[coupon.ID].UsageCount)
	usage, err := env.usageRepo.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Equal(t, 30000.0, usage.DiscountAmount)
}

func TestUpdateOrderStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("balo", 500000, 3)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	for _, target := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		order, err = env.orderSvc.UpdateOrderStatus(ctx, order.ID, target, nil)
		require.NoError(t, err)
		assert.Equal(t, target, order.Status)
	}

	assert.NotNil(t, order.ConfirmedAt)
	assert.NotNil(t, order.ShippingAt)
	assert.NotNil(t, order.DeliveredAt)
	assert.Equal(t, 4, env.notifier.statusUpdates)
}

func TestUpdateOrderStatusRejectsSkippedTransition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("non", 80000, 3)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	_, err = env.orderSvc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.orderSvc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusRefunded, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateOrderStatusShippingSetsTracking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("vi-da", 320000, 2)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	_, err = env.orderSvc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusConfirmed, nil)
	require.NoError(t, err)

	order, err = env.orderSvc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipping, &TransitionOptions{TrackingNumber: "GHN123456"})
	require.NoError(t, err)
	assert.Equal(t, "GHN123456", order.TrackingNumber)
}

func TestCancelOrderRestoresStockAndCoupon(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("dong-ho", 400000, 5)
	env.seedCart(userID, product, 2)

	coupon := &models.Coupon{
		Code:          "FIXED50",
		DiscountType:  models.DiscountTypeFixedAmount,
		DiscountValue: 50000,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		IsActive:      true,
	}
	require.NoError(t, env.couponRepo.Create(ctx, coupon))

	request := codOrderRequest()
	request.CouponCode = "FIXED50"
	order, err := env.orderSvc.CreateOrder(ctx, userID, request)
	require.NoError(t, err)
	assert.Equal(t, 3, env.productRepo.products[product.ID].Variants[0].StockQuantity)

	cancelled, err := env.orderSvc.CancelOrder(ctx, order.ID, userID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)

	// Stock back, usage ledger entry gone, counter rolled back.
	assert.Equal(t, 5, env.productRepo.products[product.ID].Variants[0].StockQuantity)
	assert.Equal(t, 0, env.couponRepo.coupons[coupon.ID].UsageCount)
	usage, err := env.usageRepo.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, usage)
}

func TestCancelOrderScopedToOwner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("kinh-mat", 150000, 2)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	_, err = env.orderSvc.CancelOrder(ctx, order.ID, primitive.NewObjectID(), "not mine")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelledOrderCannotBeCancelledTwice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("tui-xach", 150000, 4)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	_, err = env.orderSvc.CancelOrder(ctx, order.ID, userID, "first")
	require.NoError(t, err)

	_, err = env.orderSvc.CancelOrder(ctx, order.ID, userID, "second")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Stock restored exactly once.
	assert.Equal(t, 4, env.productRepo.products[product.ID].Variants[0].StockQuantity)
}

func TestDeliveredCODTriggersAutoCoupon(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	_, err := env.autoCoupon.CreateRule(ctx, &CreateRuleRequest{
		Name:        "First purchase reward",
		TriggerType: models.TriggerTypeFirstOrder,
		Template: models.CouponTemplate{
			Prefix:        "WELCOME",
			DiscountType:  models.DiscountTypePercentage,
			DiscountValue: 15,
			ValidDays:     30,
		},
	})
	require.NoError(t, err)

	product := env.seedProduct("sach", 120000, 5)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	for _, target := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		_, err = env.orderSvc.UpdateOrderStatus(ctx, order.ID, target, nil)
		require.NoError(t, err)
	}

	coupons, err := env.couponRepo.GetByApplicableUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Contains(t, coupons[0].Code, "WELCOME")
}

func TestUpdatePaymentStatusPaidTriggersAutoCoupon(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	_, err := env.autoCoupon.CreateRule(ctx, &CreateRuleRequest{
		Name:        "Big spender",
		TriggerType: models.TriggerTypeTotalSpent,
		Threshold:   500000,
		Template: models.CouponTemplate{
			Prefix:        "VIP",
			DiscountType:  models.DiscountTypeFixedAmount,
			DiscountValue: 100000,
			ValidDays:     14,
		},
	})
	require.NoError(t, err)

	product := env.seedProduct("laptop-stand", 600000, 2)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	require.NoError(t, env.orderSvc.UpdatePaymentStatus(ctx, order.ID, models.OrderPaymentStatusPaid))

	coupons, err := env.couponRepo.GetByApplicableUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Contains(t, coupons[0].Code, "VIP")
}

func TestRefundedOnlyFromCancelledOrDelivered(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("ban-phim", 900000, 3)
	env.seedCart(userID, product, 1)
	order, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	_, err = env.orderSvc.CancelOrder(ctx, order.ID, userID, "defective")
	require.NoError(t, err)

	refunded, err := env.orderSvc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusRefunded, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
	assert.Equal(t, models.OrderPaymentStatusRefunded, refunded.PaymentStatus)
}

func TestGetOrderStatistics(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	userID := primitive.NewObjectID()

	product := env.seedProduct("chuot", 250000, 10)

	env.seedCart(userID, product, 1)
	first, err := env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)
	require.NoError(t, env.orderSvc.UpdatePaymentStatus(ctx, first.ID, models.OrderPaymentStatusPaid))

	env.seedCart(userID, product, 1)
	_, err = env.orderSvc.CreateOrder(ctx, userID, codOrderRequest())
	require.NoError(t, err)

	stats, err := env.orderSvc.GetOrderStatistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.CountsByStatus[models.OrderStatusPending])
	// Only the paid order counts toward revenue.
	assert.Equal(t, first.TotalAmount, stats.TotalRevenue)
}
