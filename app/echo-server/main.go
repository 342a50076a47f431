package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpmetrics "codMarket/app/echo-server/metrics"
	"codMarket/app/echo-server/router"
	"codMarket/business/orders"
	"codMarket/business/returns"
	"codMarket/business/trustscore"
	"codMarket/internal/middleware"
	"codMarket/internal/repository/events"
	"codMarket/internal/repository/notification"
	psqlRepo "codMarket/internal/repository/postgres"
	redisRepo "codMarket/internal/repository/redis"
	"codMarket/internal/rest"
	"codMarket/pkg/config"
	"codMarket/pkg/database"
	redisClient "codMarket/pkg/database/redis"
	"codMarket/pkg/logger"
	"codMarket/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting COD Market", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	metrics.Init()
	httpmetrics.Init()

	// Redis only backs rate limiting; without it the API runs unthrottled.
	var limiter middleware.RateLimiter
	rdb, err := redisClient.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
	} else {
		defer redisClient.CloseRedisClient(rdb)
		limiter = redisRepo.NewRateLimitRepository(rdb)
	}

	var publisher orders.EventPublisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Publishing events to Kafka", "topic", cfg.Kafka.Topic)
	}

	// Init notification from mailjet
	var notifier returns.Notifier
	if cfg.Mailjet.MailjetBaseUrl != "" {
		notifier = notification.NewMailjetRepository(
			notification.MailjetConfig{
				MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
				MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
				MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
				MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
				MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
			},
		)
	}

	// Init repo
	tx := database.NewTransactor(db)
	userRepo := psqlRepo.NewUserRepository(db)
	ordersRepo := psqlRepo.NewOrdersRepository(db)
	productsRepo := psqlRepo.NewProductRepository(db)
	returnsRepo := psqlRepo.NewReturnsRepository(db)
	scoreRepo := psqlRepo.NewCustomerScoreRepository(db)

	// Init service
	trustScoreService := trustscore.NewTrustScoreService(scoreRepo, tx)
	customerService := trustscore.NewCustomerService(trustScoreService, userRepo)
	adminService := trustscore.NewAdminService(trustScoreService, scoreRepo, userRepo, tx, publisher)
	ordersService := orders.NewOrdersService(ordersRepo, productsRepo, trustScoreService, tx, publisher)
	returnsService := returns.NewReturnsService(returnsRepo, ordersRepo, userRepo, trustScoreService, tx, publisher, notifier, cfg.Trust.ReturnPeriodDays)

	// Init handler
	ordersHandler := rest.NewOrdersHandler(ordersService)
	returnsHandler := rest.NewReturnsHandler(returnsService)
	customerHandler := rest.NewCustomerHandler(customerService)
	adminCustomerHandler := rest.NewAdminCustomerHandler(adminService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(httpmetrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	authRequired := middleware.AuthMiddleware()
	optionalAuth := middleware.OptionalAuth()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetOrdersRoutes(api, ordersHandler, optionalAuth, authRequired, adminOnly,
		middleware.RateLimit(limiter, "orders", cfg.Trust.RateLimit, cfg.Trust.RateLimitWindow))
	router.SetReturnsRoutes(api, returnsHandler, authRequired, adminOnly,
		middleware.RateLimit(limiter, "returns", cfg.Trust.RateLimit, cfg.Trust.RateLimitWindow))
	router.SetCustomerRoutes(api, customerHandler, authRequired)
	router.SetAdminCustomerRoutes(api, adminCustomerHandler, authRequired, adminOnly)
	router.SetOpsRoutes(e, promhttp.Handler(), func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx)
	})

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
