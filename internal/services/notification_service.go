package services

import (
	"context"

	"goshop/internal/models"
	"goshop/pkg/logger"
)

// NotificationService is the outward-facing mail/push collaborator. Calls are
// fire-and-forget from the order flow; failures are logged, never surfaced.
type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order)
	SendOrderStatusUpdate(ctx context.Context, order *models.Order)
}

type logNotificationService struct {
	logger *logger.Logger
}

// NewLogNotificationService returns an implementation that only records the
// notification; the real delivery channel plugs in behind the same interface.
func NewLogNotificationService(log *logger.Logger) NotificationService {
	return &logNotificationService{logger: log}
}

func (s *logNotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) {
	s.logger.WithOrderCode(order.OrderCode).WithUserID(order.UserID).Info("order confirmation notification queued")
}

func (s *logNotificationService) SendOrderStatusUpdate(ctx context.Context, order *models.Order) {
	s.logger.WithOrderCode(order.OrderCode).WithUserID(order.UserID).
		WithField("status", string(order.Status)).Info("order status notification queued")
}
