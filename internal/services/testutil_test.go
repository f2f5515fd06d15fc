package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the guarded-update semantics of the
// Mongo implementations so the services can be tested without a database.

type fakeOrderRepo struct {
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.orders[id], nil
}

func (r *fakeOrderRepo) GetByCode(ctx context.Context, orderCode string) (*models.Order, error) {
	for _, order := range r.orders {
		if order.OrderCode == orderCode {
			return order, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	order, ok := r.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	applyOrderUpdates(order, updates)
	return nil
}

func (r *fakeOrderRepo) GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	order := r.orders[id]
	if order == nil || order.UserID != userID {
		return nil, nil
	}
	return order, nil
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	var result []*models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Order, int64, error) {
	var result []*models.Order
	for _, order := range r.orders {
		result = append(result, order)
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, fromStatuses []models.OrderStatus, updates map[string]interface{}) (bool, error) {
	order, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range fromStatuses {
		if order.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	applyOrderUpdates(order, updates)
	return true, nil
}

func (r *fakeOrderRepo) CountQualifyingOrders(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		if order.PaymentStatus == models.OrderPaymentStatusPaid ||
			(order.Status == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCOD) {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrderRepo) SumPaidAmount(ctx context.Context, userID primitive.ObjectID) (float64, error) {
	var total float64
	for _, order := range r.orders {
		if order.UserID == userID && order.PaymentStatus == models.OrderPaymentStatusPaid {
			total += order.TotalAmount
		}
	}
	return total, nil
}

func (r *fakeOrderRepo) GetStatistics(ctx context.Context) (*interfaces.OrderStatistics, error) {
	stats := &interfaces.OrderStatistics{
		CountsByStatus: make(map[models.OrderStatus]int64),
	}
	for _, order := range r.orders {
		stats.CountsByStatus[order.Status]++
		stats.TotalOrders++
		if order.PaymentStatus == models.OrderPaymentStatusPaid {
			stats.TotalRevenue += order.TotalAmount
		}
	}
	return stats, nil
}

func applyOrderUpdates(order *models.Order, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			order.Status = value.(models.OrderStatus)
		case "payment_status":
			order.PaymentStatus = value.(models.OrderPaymentStatus)
		case "tracking_number":
			order.TrackingNumber = value.(string)
		case "cancellation_reason":
			order.CancellationReason = value.(string)
		case "confirmed_at":
			t := value.(time.Time)
			order.ConfirmedAt = &t
		case "shipping_at":
			t := value.(time.Time)
			order.ShippingAt = &t
		case "delivered_at":
			t := value.(time.Time)
			order.DeliveredAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			order.CancelledAt = &t
		}
	}
	order.UpdatedAt = time.Now()
}

type fakePaymentRepo struct {
	payments map[primitive.ObjectID]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[primitive.ObjectID]*models.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	r.payments[payment.ID] = payment
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return r.payments[id], nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	payment, ok := r.payments[id]
	if !ok {
		return errors.New("payment not found")
	}
	applyPaymentUpdates(payment, updates)
	return nil
}

func (r *fakePaymentRepo) GetByOrderCode(ctx context.Context, orderCode string) (*models.Payment, error) {
	var latest *models.Payment
	for _, payment := range r.payments {
		if payment.OrderCode != orderCode {
			continue
		}
		if latest == nil || payment.CreatedAt.After(latest.CreatedAt) {
			latest = payment
		}
	}
	return latest, nil
}

func (r *fakePaymentRepo) GetByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	for _, payment := range r.payments {
		if payment.RequestID == requestID {
			return payment, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) GetOpenPaymentForOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	for _, payment := range r.payments {
		if payment.OrderID == orderID && !payment.Status.IsTerminal() {
			return payment, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) UpdateStatusIf(ctx context.Context, id primitive.ObjectID, fromStatuses []models.PaymentStatus, updates map[string]interface{}) (bool, error) {
	payment, ok := r.payments[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range fromStatuses {
		if payment.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	applyPaymentUpdates(payment, updates)
	return true, nil
}

func (r *fakePaymentRepo) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	var result []*models.Payment
	for _, payment := range r.payments {
		result = append(result, payment)
	}
	return result, int64(len(result)), nil
}

func applyPaymentUpdates(payment *models.Payment, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "status":
			payment.Status = value.(models.PaymentStatus)
		case "transaction_id":
			payment.TransactionID = value.(string)
		case "failure_reason":
			payment.FailureReason = value.(string)
		case "refund_amount":
			payment.RefundAmount = value.(float64)
		case "refund_reason":
			payment.RefundReason = value.(string)
		case "pay_url":
			payment.PayURL = value.(string)
		case "gateway_response":
			if raw, ok := value.(map[string]interface{}); ok {
				payment.GatewayResponse = raw
			}
		case "processed_at":
			t := value.(time.Time)
			payment.ProcessedAt = &t
		case "failed_at":
			t := value.(time.Time)
			payment.FailedAt = &t
		case "refunded_at":
			t := value.(time.Time)
			payment.RefundedAt = &t
		}
	}
	payment.UpdatedAt = time.Now()
}

type fakeCouponRepo struct {
	coupons map[primitive.ObjectID]*models.Coupon
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[primitive.ObjectID]*models.Coupon)}
}

func (r *fakeCouponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.ID = primitive.NewObjectID()
	coupon.Code = strings.ToUpper(coupon.Code)
	coupon.CreatedAt = time.Now()
	coupon.UpdatedAt = coupon.CreatedAt
	r.coupons[coupon.ID] = coupon
	return nil
}

func (r *fakeCouponRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	return r.coupons[id], nil
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	for _, coupon := range r.coupons {
		if coupon.Code == strings.ToUpper(code) {
			return coupon, nil
		}
	}
	return nil, nil
}

func (r *fakeCouponRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	coupon, ok := r.coupons[id]
	if !ok {
		return errors.New("coupon not found")
	}
	for key, value := range updates {
		if key == "is_active" {
			coupon.IsActive = value.(bool)
		}
	}
	coupon.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCouponRepo) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Coupon, int64, error) {
	var result []*models.Coupon
	for _, coupon := range r.coupons {
		result = append(result, coupon)
	}
	return result, int64(len(result)), nil
}

func (r *fakeCouponRepo) IncrementUsage(ctx context.Context, id primitive.ObjectID, delta int) error {
	coupon, ok := r.coupons[id]
	if !ok {
		return errors.New("coupon not found")
	}
	coupon.UsageCount += delta
	return nil
}

func (r *fakeCouponRepo) GetByApplicableUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Coupon, error) {
	var result []*models.Coupon
	for _, coupon := range r.coupons {
		if !coupon.IsActive {
			continue
		}
		for _, id := range coupon.ApplicableUsers {
			if id == userID {
				result = append(result, coupon)
				break
			}
		}
	}
	return result, nil
}

type fakeCouponUsageRepo struct {
	usages []*models.UserCouponUsage
}

func newFakeCouponUsageRepo() *fakeCouponUsageRepo {
	return &fakeCouponUsageRepo{}
}

func (r *fakeCouponUsageRepo) Create(ctx context.Context, usage *models.UserCouponUsage) error {
	usage.ID = primitive.NewObjectID()
	usage.UsedAt = time.Now()
	r.usages = append(r.usages, usage)
	return nil
}

func (r *fakeCouponUsageRepo) CountByUserAndCoupon(ctx context.Context, userID, couponID primitive.ObjectID) (int64, error) {
	var count int64
	for _, usage := range r.usages {
		if usage.UserID == userID && usage.CouponID == couponID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCouponUsageRepo) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.UserCouponUsage, error) {
	for _, usage := range r.usages {
		if usage.OrderID == orderID {
			return usage, nil
		}
	}
	return nil, nil
}

func (r *fakeCouponUsageRepo) DeleteByOrderID(ctx context.Context, orderID primitive.ObjectID) error {
	remaining := r.usages[:0]
	for _, usage := range r.usages {
		if usage.OrderID != orderID {
			remaining = append(remaining, usage)
		}
	}
	r.usages = remaining
	return nil
}

type fakeRuleRepo struct {
	rules map[primitive.ObjectID]*models.AutoCouponRule
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[primitive.ObjectID]*models.AutoCouponRule)}
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule *models.AutoCouponRule) error {
	rule.ID = primitive.NewObjectID()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	r.rules[rule.ID] = rule
	return nil
}

func (r *fakeRuleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AutoCouponRule, error) {
	return r.rules[id], nil
}

func (r *fakeRuleRepo) GetActiveRules(ctx context.Context) ([]*models.AutoCouponRule, error) {
	var result []*models.AutoCouponRule
	for _, rule := range r.rules {
		if rule.IsActive {
			result = append(result, rule)
		}
	}
	return result, nil
}

func (r *fakeRuleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	rule, ok := r.rules[id]
	if !ok {
		return errors.New("rule not found")
	}
	for key, value := range updates {
		if key == "is_active" {
			rule.IsActive = value.(bool)
		}
	}
	return nil
}

func (r *fakeRuleRepo) IncrementRedemptions(ctx context.Context, id primitive.ObjectID) error {
	rule, ok := r.rules[id]
	if !ok {
		return errors.New("rule not found")
	}
	rule.RedemptionCount++
	return nil
}

type redemptionKey struct {
	user primitive.ObjectID
	rule primitive.ObjectID
}

type fakeRedemptionRepo struct {
	redemptions map[redemptionKey]*models.UserCouponRedemption
}

func newFakeRedemptionRepo() *fakeRedemptionRepo {
	return &fakeRedemptionRepo{redemptions: make(map[redemptionKey]*models.UserCouponRedemption)}
}

func (r *fakeRedemptionRepo) Create(ctx context.Context, redemption *models.UserCouponRedemption) error {
	key := redemptionKey{user: redemption.UserID, rule: redemption.RuleID}
	if _, exists := r.redemptions[key]; exists {
		return errors.New("duplicate key error")
	}
	redemption.ID = primitive.NewObjectID()
	r.redemptions[key] = redemption
	return nil
}

func (r *fakeRedemptionRepo) Exists(ctx context.Context, userID, ruleID primitive.ObjectID) (bool, error) {
	_, exists := r.redemptions[redemptionKey{user: userID, rule: ruleID}]
	return exists, nil
}

type fakeProductRepo struct {
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
}

func (r *fakeProductRepo) add(product *models.Product) *models.Product {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	for i := range product.Variants {
		if product.Variants[i].ID.IsZero() {
			product.Variants[i].ID = primitive.NewObjectID()
		}
	}
	r.products[product.ID] = product
	return product
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, productID, variantID primitive.ObjectID, delta int) (bool, error) {
	product, ok := r.products[productID]
	if !ok {
		return false, nil
	}
	variant := product.Variant(variantID)
	if variant == nil {
		return false, nil
	}
	if delta < 0 && variant.StockQuantity < -delta {
		return false, nil
	}
	variant.StockQuantity += delta
	return true, nil
}

type fakeCartRepo struct {
	carts map[primitive.ObjectID]*models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (r *fakeCartRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return r.carts[userID], nil
}

func (r *fakeCartRepo) ClearByUserID(ctx context.Context, userID primitive.ObjectID) error {
	delete(r.carts, userID)
	return nil
}

type fakeNotifier struct {
	confirmations int
	statusUpdates int
}

func (n *fakeNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order) {
	n.confirmations++
}

func (n *fakeNotifier) SendOrderStatusUpdate(ctx context.Context, order *models.Order) {
	n.statusUpdates++
}

// testEnv bundles every fake plus the wired services under test.
type testEnv struct {
	orderRepo      *fakeOrderRepo
	paymentRepo    *fakePaymentRepo
	couponRepo     *fakeCouponRepo
	usageRepo      *fakeCouponUsageRepo
	ruleRepo       *fakeRuleRepo
	redemptionRepo *fakeRedemptionRepo
	productRepo    *fakeProductRepo
	cartRepo       *fakeCartRepo
	notifier       *fakeNotifier

	couponSvc  CouponService
	autoCoupon AutoCouponService
	orderSvc   OrderService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orderRepo:      newFakeOrderRepo(),
		paymentRepo:    newFakePaymentRepo(),
		couponRepo:     newFakeCouponRepo(),
		usageRepo:      newFakeCouponUsageRepo(),
		ruleRepo:       newFakeRuleRepo(),
		redemptionRepo: newFakeRedemptionRepo(),
		productRepo:    newFakeProductRepo(),
		cartRepo:       newFakeCartRepo(),
		notifier:       &fakeNotifier{},
	}

	log := logger.NewNop()
	env.couponSvc = NewCouponService(env.couponRepo, env.usageRepo, env.productRepo, log)
	env.autoCoupon = NewAutoCouponService(env.ruleRepo, env.redemptionRepo, env.couponRepo, env.orderRepo, log)
	env.orderSvc = NewOrderService(env.orderRepo, env.productRepo, env.cartRepo, env.couponSvc, env.autoCoupon, env.notifier, utils.DefaultShipping, log)

	return env
}

// seedProduct adds a product with one variant and returns it.
func (env *testEnv) seedProduct(name string, price float64, stock int) *models.Product {
	return env.productRepo.add(&models.Product{
		Name:     name,
		IsActive: true,
		Variants: []models.ProductVariant{
			{SKU: strings.ToUpper(name) + "-1", Price: price, StockQuantity: stock, IsAvailable: true},
		},
	})
}

// seedCart places a single-line cart for the user.
func (env *testEnv) seedCart(userID primitive.ObjectID, product *models.Product, quantity int) {
	env.cartRepo.carts[userID] = &models.Cart{
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: product.ID, VariantID: product.Variants[0].ID, Quantity: quantity},
		},
	}
}
