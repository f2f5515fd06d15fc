package routes

import (
	"goshop/internal/handlers"
	"goshop/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes wires the payment endpoints. The gateway callbacks are
// unauthenticated; their signatures are the authentication.
func SetupPaymentRoutes(router *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, jwtSecret string) {
	payments := router.Group("/payments")
	{
		payments.POST("/momo/callback", paymentHandler.MomoCallback)
		payments.GET("/vnpay/return", paymentHandler.VnpayReturn)
	}

	authed := router.Group("/payments")
	authed.Use(middleware.AuthRequired(jwtSecret))
	{
		authed.POST("", paymentHandler.CreatePayment)
		authed.GET("/verify/:orderId", paymentHandler.VerifyPayment)
	}

	admin := router.Group("/admin/payments")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("", paymentHandler.ListPayments)
		admin.POST("/:id/refund", paymentHandler.RefundPayment)
	}
}
