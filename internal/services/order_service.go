package services

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService owns order creation and every legal status transition, each
// with its side effects (stock restore, coupon reversal, auto-coupon
// evaluation).
type OrderService interface {
	CreateOrder(ctx context.Context, userID primitive.ObjectID, request *CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error)
	GetOrderForUser(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error)
	ListOrdersForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Order, int64, error)
	ListAllOrders(ctx context.Context, params *utils.PaginationParams) ([]*models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, target models.OrderStatus, opts *TransitionOptions) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID, userID primitive.ObjectID, reason string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderPaymentStatus) error
	GetOrderStatistics(ctx context.Context) (*interfaces.OrderStatistics, error)
}

type CreateOrderRequest struct {
	PaymentMethod   models.PaymentMethod   `json:"payment_method" validate:"required,oneof=cod momo vnpay bank_transfer"`
	CouponCode      string                 `json:"coupon_code" validate:"omitempty,max=30"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" validate:"required"`
	Note            string                 `json:"note" validate:"max=500"`
}

type TransitionOptions struct {
	TrackingNumber string
	Reason         string
}

// transitionTable maps each target status to the statuses it may be reached
// from. Anything else is rejected.
var transitionTable = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusConfirmed:  {models.OrderStatusPending},
	models.OrderStatusProcessing: {models.OrderStatusConfirmed},
	models.OrderStatusShipping:   {models.OrderStatusConfirmed, models.OrderStatusProcessing},
	models.OrderStatusDelivered:  {models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusShipping},
	models.OrderStatusCancelled:  {models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusShipping},
	models.OrderStatusRefunded:   {models.OrderStatusCancelled, models.OrderStatusDelivered},
}

type orderService struct {
	orderRepo    interfaces.OrderRepository
	productRepo  interfaces.ProductRepository
	cartRepo     interfaces.CartRepository
	couponSvc    CouponService
	autoCoupon   AutoCouponService
	notification NotificationService
	shippingFee  float64
	logger       *logger.Logger
}

func NewOrderService(
	orderRepo interfaces.OrderRepository,
	productRepo interfaces.ProductRepository,
	cartRepo interfaces.CartRepository,
	couponSvc CouponService,
	autoCoupon AutoCouponService,
	notification NotificationService,
	shippingFee float64,
	log *logger.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		couponSvc:    couponSvc,
		autoCoupon:   autoCoupon,
		notification: notification,
		shippingFee:  shippingFee,
		logger:       log,
	}
}

// CreateOrder turns the user's cart into an order. All lines are validated
// before anything mutates; the mutation phase is a compensating-action list,
// so a failure at step N undoes steps N-1..1 before the error surfaces.
func (s *orderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, request *CreateOrderRequest) (*models.Order, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	items, subtotal, err := s.snapshotLines(ctx, cart.Items)
	if err != nil {
		return nil, err
	}

	var pricing *CouponPricing
	discount := 0.0
	if request.CouponCode != "" {
		pricing, err = s.couponSvc.ValidateAndPrice(ctx, request.CouponCode, userID, subtotal, items)
		if err != nil {
			return nil, err
		}
		discount = pricing.DiscountAmount
	}

	shippingFee := s.shippingFee
	if subtotal >= utils.FreeShippingOver {
		shippingFee = 0
	}

	total := subtotal + shippingFee - discount
	if total < 0 {
		total = 0
	}

	order := &models.Order{
		OrderCode:       utils.GenerateOrderCode(),
		UserID:          userID,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		DiscountAmount:  discount,
		TotalAmount:     total,
		ShippingAddress: request.ShippingAddress,
		Note:            request.Note,
		Status:          models.OrderStatusPending,
		PaymentMethod:   request.PaymentMethod,
		PaymentStatus:   models.OrderPaymentStatusPending,
	}
	if pricing != nil {
		order.CouponID = &pricing.Coupon.ID
		order.CouponCode = pricing.Coupon.Code
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	// Compensations run in reverse on failure. The persisted order itself is
	// compensated by voiding it, never by deleting it.
	var undo []func(context.Context)
	fail := func(cause error) (*models.Order, error) {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i](ctx)
		}
		s.voidOrder(ctx, order.ID, cause)
		return nil, cause
	}

	for _, item := range items {
		ok, err := s.productRepo.AdjustStock(ctx, item.ProductID, item.VariantID, -item.Quantity)
		if err != nil {
			return fail(err)
		}
		if !ok {
			// Raced with another checkout between validation and commit.
			return fail(fmt.Errorf("%w for %s", ErrInsufficientStock, item.Name))
		}

		productID, variantID, qty := item.ProductID, item.VariantID, item.Quantity
		undo = append(undo, func(ctx context.Context) {
			if _, err := s.productRepo.AdjustStock(ctx, productID, variantID, qty); err != nil {
				s.logger.WithError(err).WithOrderCode(order.OrderCode).Error("failed to restore stock during rollback")
			}
		})
	}

	if pricing != nil {
		if err := s.couponSvc.Apply(ctx, pricing.Coupon.ID, userID, order.ID, discount); err != nil {
			return fail(err)
		}
		undo = append(undo, func(ctx context.Context) {
			if err := s.couponSvc.Reverse(ctx, order.ID); err != nil {
				s.logger.WithError(err).WithOrderCode(order.OrderCode).Error("failed to reverse coupon during rollback")
			}
		})
	}

	if err := s.cartRepo.ClearByUserID(ctx, userID); err != nil {
		// The order is committed at this point; a lingering cart is not worth
		// unwinding a valid sale.
		s.logger.WithError(err).WithOrderCode(order.OrderCode).Warn("failed to clear cart after order creation")
	}

	s.notification.SendOrderConfirmation(ctx, order)

	s.logger.WithOrderID(order.ID).WithOrderCode(order.OrderCode).WithUserID(userID).
		WithField("total_amount", order.TotalAmount).Info("order created")

	return order, nil
}

// snapshotLines re-reads the catalog for every cart line and freezes
// name/price/image/SKU into order items. Nothing is decremented here.
func (s *orderService) snapshotLines(ctx context.Context, lines []models.CartItem) ([]models.OrderItem, float64, error) {
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := 0.0

	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if product == nil || !product.IsActive {
			return nil, 0, ErrProductNotFound
		}

		variant := product.Variant(line.VariantID)
		if variant == nil {
			return nil, 0, fmt.Errorf("%w in product %s", ErrVariantNotFound, product.Name)
		}
		if !variant.IsAvailable {
			return nil, 0, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
		}
		if variant.StockQuantity < line.Quantity {
			return nil, 0, fmt.Errorf("%w for %s", ErrInsufficientStock, product.Name)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			VariantID: variant.ID,
			Name:      product.Name,
			SKU:       variant.SKU,
			Image:     product.Image,
			UnitPrice: variant.Price,
			Quantity:  line.Quantity,
		})
		subtotal += variant.Price * float64(line.Quantity)
	}

	return items, subtotal, nil
}

// voidOrder marks a freshly created order as cancelled after its side effects
// could not be committed. Orders are never deleted.
func (s *orderService) voidOrder(ctx context.Context, orderID primitive.ObjectID, cause error) {
	now := time.Now()
	err := s.orderRepo.Update(ctx, orderID, map[string]interface{}{
		"status":              models.OrderStatusCancelled,
		"cancelled_at":        now,
		"cancellation_reason": fmt.Sprintf("order creation failed: %v", cause),
	})
	if err != nil {
		s.logger.WithError(err).WithOrderID(orderID).Error("failed to void order after rollback")
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrderForUser(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrdersForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	return s.orderRepo.GetByUserID(ctx, userID, params)
}

func (s *orderService) ListAllOrders(ctx context.Context, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	return s.orderRepo.GetAll(ctx, params)
}

// UpdateOrderStatus performs one transition from the table. The guarded
// update is the only lock: if a competing request moved the order first, the
// guard misses and the transition is rejected.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, target models.OrderStatus, opts *TransitionOptions) (*models.Order, error) {
	if opts == nil {
		opts = &TransitionOptions{}
	}

	fromStatuses, ok := transitionTable[target]
	if !ok {
		return nil, fmt.Errorf("%w: no transition to %s", ErrInvalidTransition, target)
	}

	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": target}
	now := time.Now()

	switch target {
	case models.OrderStatusConfirmed:
		updates["confirmed_at"] = now
	case models.OrderStatusShipping:
		updates["shipping_at"] = now
		if opts.TrackingNumber != "" {
			updates["tracking_number"] = opts.TrackingNumber
		}
	case models.OrderStatusDelivered:
		updates["delivered_at"] = now
	case models.OrderStatusCancelled:
		updates["cancelled_at"] = now
		updates["cancellation_reason"] = opts.Reason
	case models.OrderStatusRefunded:
		updates["payment_status"] = models.OrderPaymentStatusRefunded
	}

	applied, err := s.orderRepo.UpdateStatusIf(ctx, orderID, fromStatuses, updates)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	switch target {
	case models.OrderStatusDelivered:
		if order.PaymentMethod == models.PaymentMethodCOD {
			if _, err := s.autoCoupon.Evaluate(ctx, order.UserID); err != nil {
				s.logger.WithError(err).WithOrderID(orderID).Warn("auto coupon evaluation failed on delivery")
			}
		}
	case models.OrderStatusCancelled:
		s.compensateCancellation(ctx, order)
	}

	updated, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.notification.SendOrderStatusUpdate(ctx, updated)

	s.logger.WithOrderID(orderID).WithOrderCode(order.OrderCode).
		WithFields(map[string]interface{}{"from": string(order.Status), "to": string(target)}).
		Info("order status updated")

	return updated, nil
}

// compensateCancellation restores stock for every line and reverses any
// coupon redemption. Best-effort sequential; each failure is logged and the
// remaining steps still run.
func (s *orderService) compensateCancellation(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		if _, err := s.productRepo.AdjustStock(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			s.logger.WithError(err).WithOrderCode(order.OrderCode).
				WithField("product_id", item.ProductID.Hex()).Error("failed to restore stock on cancellation")
		}
	}

	if err := s.couponSvc.Reverse(ctx, order.ID); err != nil {
		s.logger.WithError(err).WithOrderCode(order.OrderCode).Error("failed to reverse coupon on cancellation")
	}
}

// CancelOrder is the user-facing cancellation: scoped to the requester's own
// orders, then the same cancelled transition as the admin path.
func (s *orderService) CancelOrder(ctx context.Context, orderID, userID primitive.ObjectID, reason string) (*models.Order, error) {
	if _, err := s.GetOrderForUser(ctx, orderID, userID); err != nil {
		return nil, err
	}

	return s.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled, &TransitionOptions{Reason: reason})
}

// UpdatePaymentStatus is driven by the payment service after a verified
// gateway callback. A paid result re-evaluates auto-coupon milestones.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderPaymentStatus) error {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Update(ctx, orderID, map[string]interface{}{"payment_status": status}); err != nil {
		return err
	}

	if status == models.OrderPaymentStatusPaid {
		if _, err := s.autoCoupon.Evaluate(ctx, order.UserID); err != nil {
			s.logger.WithError(err).WithOrderID(orderID).Warn("auto coupon evaluation failed on payment")
		}
	}

	s.logger.WithOrderID(orderID).WithOrderCode(order.OrderCode).
		WithField("payment_status", string(status)).Info("order payment status updated")

	return nil
}

func (s *orderService) GetOrderStatistics(ctx context.Context) (*interfaces.OrderStatistics, error) {
	return s.orderRepo.GetStatistics(ctx)
}
