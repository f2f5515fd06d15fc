package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goshop/internal/config"
	"goshop/internal/handlers"
	"goshop/internal/middleware"
	"goshop/internal/models"
	"goshop/internal/repositories/mongodb"
	"goshop/internal/services"
	"goshop/internal/utils"
	"goshop/pkg/cache"
	"goshop/pkg/database"
	"goshop/pkg/logger"
	"goshop/pkg/payment"
	"goshop/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFormat := "text"
	if config.IsProduction() {
		logFormat = "json"
	}
	log, err := logger.NewLogger(&logger.Config{
		Level:      cfg.App.LogLevel,
		Format:     logFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	if err := database.NewMigrator(mongoDB.Database).Up(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisCache.Close()

	cacheService := services.NewCacheService(redisCache, log)

	// Repositories
	orderRepo := mongodb.NewOrderRepository(mongoDB.Database)
	paymentRepo := mongodb.NewPaymentRepository(mongoDB.Database, cacheService)
	couponRepo := mongodb.NewCouponRepository(mongoDB.Database, cacheService)
	couponUsageRepo := mongodb.NewCouponUsageRepository(mongoDB.Database)
	ruleRepo := mongodb.NewAutoCouponRuleRepository(mongoDB.Database)
	redemptionRepo := mongodb.NewCouponRedemptionRepository(mongoDB.Database)
	productRepo := mongodb.NewProductRepository(mongoDB.Database)
	cartRepo := mongodb.NewCartRepository(mongoDB.Database)

	// Payment gateway providers
	providers := map[models.PaymentMethod]payment.GatewayProvider{
		models.PaymentMethodMomo: payment.NewMomoProvider(
			cfg.Payment.Momo.PartnerCode,
			cfg.Payment.Momo.AccessKey,
			cfg.Payment.Momo.SecretKey,
			cfg.Payment.Momo.Endpoint,
			cfg.Payment.Momo.RedirectURL,
			cfg.Payment.Momo.IPNURL,
			utils.MomoRequestType,
		),
		models.PaymentMethodVnpay: payment.NewVnpayProvider(
			cfg.Payment.Vnpay.TmnCode,
			cfg.Payment.Vnpay.HashSecret,
			cfg.Payment.Vnpay.PayURL,
			cfg.Payment.Vnpay.ReturnURL,
			cfg.Payment.Vnpay.Locale,
		),
		models.PaymentMethodBankTransfer: payment.NewBankTransferProvider(
			cfg.Payment.BankTransfer.BankName,
			cfg.Payment.BankTransfer.AccountNumber,
			cfg.Payment.BankTransfer.AccountHolder,
		),
	}

	// Services
	notificationService := services.NewLogNotificationService(log)
	couponService := services.NewCouponService(couponRepo, couponUsageRepo, productRepo, log)
	autoCouponService := services.NewAutoCouponService(ruleRepo, redemptionRepo, couponRepo, orderRepo, log)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, couponService, autoCouponService, notificationService, cfg.Shipping.FlatFee, log)
	paymentService := services.NewPaymentService(paymentRepo, orderService, providers, log)

	// Handlers
	orderHandler := handlers.NewOrderHandler(orderService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	couponHandler := handlers.NewCouponHandler(couponService, autoCouponService, log)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Fatal("invalid trusted proxies")
		}
	}

	v1 := router.Group("/api/v1")
	{
		routes.SetupOrderRoutes(v1, orderHandler, cfg.Security.JWTSecret)
		routes.SetupPaymentRoutes(v1, paymentHandler, cfg.Security.JWTSecret)
		routes.SetupCouponRoutes(v1, couponHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"mongodb": "up", "redis": "up"}
		if err := mongoDB.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			checks["mongodb"] = "down"
		}
		if err := cacheService.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = "down"
		}
		c.JSON(status, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
			"checks":  checks,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
