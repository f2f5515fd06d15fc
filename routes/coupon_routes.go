package routes

import (
	"goshop/internal/handlers"
	"goshop/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCouponRoutes wires the coupon endpoints.
func SetupCouponRoutes(router *gin.RouterGroup, couponHandler *handlers.CouponHandler, jwtSecret string) {
	coupons := router.Group("/coupons")
	coupons.Use(middleware.AuthRequired(jwtSecret))
	{
		coupons.GET("/my", couponHandler.GetMyCoupons)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/coupons", couponHandler.CreateCoupon)
		admin.GET("/coupons", couponHandler.ListCoupons)
		admin.POST("/coupon-rules", couponHandler.CreateRule)
		admin.GET("/coupon-rules", couponHandler.ListRules)
	}
}
