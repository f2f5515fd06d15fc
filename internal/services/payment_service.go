package services

import (
	"context"
	"fmt"
	"time"

	"goshop/internal/models"
	"goshop/internal/repositories/interfaces"
	"goshop/internal/utils"
	"goshop/pkg/logger"
	"goshop/pkg/payment"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentService drives gateway payment sessions and absorbs the signed
// callbacks the gateways send back. Order payment status is updated through
// OrderService so the auto-coupon triggers fire from one place.
type PaymentService interface {
	// CreatePayment opens (or reuses) a payment session for an order. For
	// redirect/wallet gateways the response carries the pay URL; COD and bank
	// transfer record the intent without one.
	CreatePayment(ctx context.Context, orderID, userID primitive.ObjectID, clientIP string) (*models.Payment, error)

	// HandleMomoCallback processes an IPN notification. Replays and unknown
	// sessions are no-ops; signature failures are errors.
	HandleMomoCallback(ctx context.Context, params map[string]string) error

	// HandleVnpayReturn processes the browser return redirect and reports the
	// resulting payment so the caller can render the outcome.
	HandleVnpayReturn(ctx context.Context, params map[string]string) (*models.Payment, error)

	// VerifyPayment reports the current payment for an order, expiring stale
	// sessions on read.
	VerifyPayment(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Payment, error)

	RefundPayment(ctx context.Context, paymentID primitive.ObjectID, amount float64, reason string) (*models.Payment, error)
	ListPayments(ctx context.Context, params *utils.PaginationParams) ([]*models.Payment, int64, error)
}

type paymentService struct {
	paymentRepo interfaces.PaymentRepository
	orderSvc    OrderService
	providers   map[models.PaymentMethod]payment.GatewayProvider
	sessionTTL  time.Duration
	logger      *logger.Logger
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	orderSvc OrderService,
	providers map[models.PaymentMethod]payment.GatewayProvider,
	log *logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderSvc:    orderSvc,
		providers:   providers,
		sessionTTL:  utils.PaymentSessionTTL,
		logger:      log,
	}
}

func (s *paymentService) CreatePayment(ctx context.Context, orderID, userID primitive.ObjectID, clientIP string) (*models.Payment, error) {
	order, err := s.orderSvc.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.OrderPaymentStatusPaid {
		return nil, ErrPaymentCompleted
	}

	// An open, unexpired session is handed back instead of opening a second
	// one; the gateways reject duplicate order references anyway.
	open, err := s.paymentRepo.GetOpenPaymentForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		if time.Now().Before(open.ExpiresAt) {
			return open, nil
		}
		s.expireSession(ctx, open)
	}

	pay := &models.Payment{
		OrderID:   order.ID,
		OrderCode: order.OrderCode,
		UserID:    userID,
		Method:    order.PaymentMethod,
		Status:    models.PaymentStatusPending,
		Amount:    order.TotalAmount,
		Currency:  utils.DefaultCurrency,
		RequestID: uuid.New().String(),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	provider, hasProvider := s.providers[order.PaymentMethod]
	if order.PaymentMethod != models.PaymentMethodCOD && !hasProvider {
		return nil, ErrUnsupportedMethod
	}

	if err := s.paymentRepo.Create(ctx, pay); err != nil {
		return nil, err
	}

	if hasProvider {
		session, err := provider.CreateSession(ctx, &payment.SessionRequest{
			OrderCode: order.OrderCode,
			RequestID: pay.RequestID,
			Amount:    order.TotalAmount,
			OrderInfo: fmt.Sprintf("Thanh toan don hang %s", order.OrderCode),
			ClientIP:  clientIP,
		})
		if err != nil {
			s.failSession(ctx, pay, err)
			if provErr, ok := err.(*payment.ProviderError); ok {
				return nil, &GatewayError{Provider: provErr.Provider, Code: provErr.Code, Message: provErr.Message}
			}
			return nil, err
		}

		pay.PayURL = session.PayURL
		pay.GatewayResponse = session.Raw
		if err := s.paymentRepo.Update(ctx, pay.ID, map[string]interface{}{
			"pay_url":          session.PayURL,
			"gateway_response": session.Raw,
		}); err != nil {
			return nil, err
		}
	}

	s.logger.WithPaymentID(pay.ID).WithOrderCode(pay.OrderCode).
		WithField("method", string(pay.Method)).Info("payment session created")

	return pay, nil
}

func (s *paymentService) HandleMomoCallback(ctx context.Context, params map[string]string) error {
	provider, ok := s.providers[models.PaymentMethodMomo]
	if !ok {
		return ErrUnsupportedMethod
	}

	result, err := provider.VerifyCallback(ctx, params)
	if err != nil {
		s.logger.WithError(err).Warn("momo callback rejected")
		return ErrInvalidSignature
	}

	_, err = s.settleCallback(ctx, "momo", result)
	return err
}

func (s *paymentService) HandleVnpayReturn(ctx context.Context, params map[string]string) (*models.Payment, error) {
	provider, ok := s.providers[models.PaymentMethodVnpay]
	if !ok {
		return nil, ErrUnsupportedMethod
	}

	result, err := provider.VerifyCallback(ctx, params)
	if err != nil {
		s.logger.WithError(err).Warn("vnpay return rejected")
		return nil, ErrInvalidSignature
	}

	return s.settleCallback(ctx, "vnpay", result)
}

// settleCallback moves the payment to its terminal state exactly once. The
// guarded status update is what makes gateway retries and the IPN/return
// double-delivery safe.
func (s *paymentService) settleCallback(ctx context.Context, provider string, result *payment.CallbackResult) (*models.Payment, error) {
	pay, err := s.resolveCallbackPayment(ctx, result)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentNotFound
	}

	if pay.Status.IsTerminal() {
		// Replayed callback; the first delivery already settled it.
		return pay, nil
	}

	if result.Amount > 0 && result.Amount != pay.Amount {
		s.logger.WithPaymentID(pay.ID).WithFields(map[string]interface{}{
			"expected": pay.Amount,
			"reported": result.Amount,
		}).Error("callback amount mismatch")
		return nil, fmt.Errorf("callback amount %.0f does not match payment amount %.0f", result.Amount, pay.Amount)
	}

	now := time.Now()
	open := []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing}

	var updates map[string]interface{}
	if result.Success {
		updates = map[string]interface{}{
			"status":           models.PaymentStatusCompleted,
			"transaction_id":   result.TransactionID,
			"gateway_response": result.Raw,
			"processed_at":     now,
		}
	} else {
		updates = map[string]interface{}{
			"status":           models.PaymentStatusFailed,
			"failure_reason":   fmt.Sprintf("%s: %s", result.ResultCode, result.Message),
			"gateway_response": result.Raw,
			"failed_at":        now,
		}
	}

	applied, err := s.paymentRepo.UpdateStatusIf(ctx, pay.ID, open, updates)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race against a concurrent delivery of the same callback.
		return s.paymentRepo.GetByID(ctx, pay.ID)
	}

	orderStatus := models.OrderPaymentStatusFailed
	if result.Success {
		orderStatus = models.OrderPaymentStatusPaid
	}
	if err := s.orderSvc.UpdatePaymentStatus(ctx, pay.OrderID, orderStatus); err != nil {
		s.logger.WithError(err).WithPaymentID(pay.ID).Error("failed to propagate payment result to order")
	}

	s.logger.WithPaymentID(pay.ID).WithOrderCode(pay.OrderCode).WithFields(map[string]interface{}{
		"provider": provider,
		"success":  result.Success,
		"code":     result.ResultCode,
	}).Info("payment callback settled")

	return s.paymentRepo.GetByID(ctx, pay.ID)
}

// resolveCallbackPayment finds the session a callback belongs to. MoMo echoes
// the request id we opened the session with, which pins the callback to that
// exact session even after a newer one superseded it for the same order.
// VNPay carries no request id, so its returns resolve by order code.
func (s *paymentService) resolveCallbackPayment(ctx context.Context, result *payment.CallbackResult) (*models.Payment, error) {
	if result.RequestID != "" {
		return s.paymentRepo.GetByRequestID(ctx, result.RequestID)
	}
	return s.paymentRepo.GetByOrderCode(ctx, result.OrderCode)
}

func (s *paymentService) VerifyPayment(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Payment, error) {
	order, err := s.orderSvc.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	pay, err := s.paymentRepo.GetByOrderCode(ctx, order.OrderCode)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentNotFound
	}

	if pay.Status == models.PaymentStatusPending && time.Now().After(pay.ExpiresAt) && pay.Method != models.PaymentMethodCOD {
		s.expireSession(ctx, pay)
		return s.paymentRepo.GetByID(ctx, pay.ID)
	}

	return pay, nil
}

func (s *paymentService) RefundPayment(ctx context.Context, paymentID primitive.ObjectID, amount float64, reason string) (*models.Payment, error) {
	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, ErrPaymentNotFound
	}
	if pay.Status != models.PaymentStatusCompleted {
		return nil, ErrPaymentNotRefundable
	}

	if amount <= 0 || amount > pay.Amount {
		amount = pay.Amount
	}

	now := time.Now()
	applied, err := s.paymentRepo.UpdateStatusIf(ctx, pay.ID,
		[]models.PaymentStatus{models.PaymentStatusCompleted},
		map[string]interface{}{
			"status":        models.PaymentStatusRefunded,
			"refund_amount": amount,
			"refund_reason": reason,
			"refunded_at":   now,
		})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrPaymentNotRefundable
	}

	if err := s.orderSvc.UpdatePaymentStatus(ctx, pay.OrderID, models.OrderPaymentStatusRefunded); err != nil {
		s.logger.WithError(err).WithPaymentID(pay.ID).Error("failed to mark order refunded")
	}

	s.logger.WithPaymentID(pay.ID).WithOrderCode(pay.OrderCode).
		WithField("refund_amount", amount).Info("payment refunded")

	return s.paymentRepo.GetByID(ctx, pay.ID)
}

func (s *paymentService) ListPayments(ctx context.Context, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	return s.paymentRepo.GetAll(ctx, params)
}

func (s *paymentService) expireSession(ctx context.Context, pay *models.Payment) {
	now := time.Now()
	applied, err := s.paymentRepo.UpdateStatusIf(ctx, pay.ID,
		[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusProcessing},
		map[string]interface{}{
			"status":         models.PaymentStatusFailed,
			"failure_reason": "payment session expired",
			"failed_at":      now,
		})
	if err != nil {
		s.logger.WithError(err).WithPaymentID(pay.ID).Error("failed to expire payment session")
		return
	}
	if applied {
		s.logger.WithPaymentID(pay.ID).WithOrderCode(pay.OrderCode).Info("payment session expired")
	}
}

func (s *paymentService) failSession(ctx context.Context, pay *models.Payment, cause error) {
	now := time.Now()
	err := s.paymentRepo.Update(ctx, pay.ID, map[string]interface{}{
		"status":         models.PaymentStatusFailed,
		"failure_reason": cause.Error(),
		"failed_at":      now,
	})
	if err != nil {
		s.logger.WithError(err).WithPaymentID(pay.ID).Error("failed to mark payment session failed")
	}
}
