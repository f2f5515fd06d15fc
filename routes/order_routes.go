package routes

import (
	"goshop/internal/handlers"
	"goshop/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes wires the shopper and back-office order endpoints.
func SetupOrderRoutes(router *gin.RouterGroup, orderHandler *handlers.OrderHandler, jwtSecret string) {
	orders := router.Group("/orders")
	orders.Use(middleware.AuthRequired(jwtSecret))
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.ListMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
	}

	admin := router.Group("/admin/orders")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("", orderHandler.ListAllOrders)
		admin.GET("/statistics", orderHandler.GetStatistics)
		admin.GET("/:id", orderHandler.GetOrderAdmin)
		admin.PUT("/:id/status", orderHandler.UpdateOrderStatus)
	}
}
