package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	paymentUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/payment"
	walletUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/wallet"
	webhookUseCase "github.com/quicrefill/customer-service/internal/domain/usecase/webhook"

	cacheport "github.com/quicrefill/customer-service/internal/domain/port/cache"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/handler"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/routes"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/cache"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/database"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/gateway"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/logger"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/notification"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/repository"
	timeProvider "github.com/quicrefill/customer-service/internal/infrastructure/adapter/time"
	"github.com/quicrefill/customer-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)

	// Setup database configuration
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      int(cfg.Database.RetryDelay / time.Second),
	}

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		_ = dbManager.Close()
	}()

	// Run migrations
	if err := dbManager.MigrationManager().MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize repositories
	paymentRepo := repository.NewPaymentRepository(dbManager.DB(), tp, appLogger)
	refundRepo := repository.NewRefundRepository(dbManager.DB(), appLogger)
	walletLockRepo := repository.NewWalletLockRepository(dbManager.DB(), tp, appLogger)

	// Unit of work (transaction manager)
	uow := dbManager.CreateUnitOfWork()

	// Cache is optional. A dead Redis means cold method-status lookups and
	// no redelivery hints, never a refused payment.
	var cacheStore cacheport.Store
	redisStore, err := cache.NewRedisStore(context.Background(), cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, continuing without cache", map[string]any{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
	} else {
		cacheStore = redisStore
		defer func() {
			_ = redisStore.Close()
		}()
	}

	// Outbound adapters
	notifier := notification.NewMailer(notification.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, appLogger)

	gatewayClient := gateway.NewFlutterwaveClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   cfg.Gateway.Timeout,
	}, appLogger)

	// Initialize use cases
	lockTimeout := time.Duration(cfg.Payment.WalletLockTimeoutMs) * time.Millisecond
	walletService := walletUseCase.NewService(uow, walletLockRepo, tp, appLogger, lockTimeout)

	paymentService := paymentUseCase.NewService(
		paymentRepo,
		refundRepo,
		walletService,
		gatewayClient,
		notifier,
		cacheStore,
		tp,
		appLogger,
		paymentUseCase.Options{
			Currency:        cfg.Gateway.Currency,
			RedirectURL:     cfg.Server.PublicURL + "/api/payments/callback",
			MethodStatusTTL: time.Duration(cfg.Payment.MethodStatusTTLSeconds) * time.Second,
		},
	)

	webhookProcessor := webhookUseCase.NewProcessor(paymentService, cacheStore, appLogger)

	// Initialize API handlers
	paymentHandler := handler.NewPaymentHandler(paymentService, walletService, appLogger)
	callbackHandler := handler.NewCallbackHandler(
		paymentService,
		webhookProcessor,
		cfg.Gateway.WebhookSecret,
		cfg.Frontend.BaseURL,
		appLogger,
	)
	healthHandler := handler.NewHealthHandler(dbManager, appLogger)

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, paymentHandler, callbackHandler, healthHandler, cfg.Auth.JWTSecret, appLogger)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited", nil)
}

// validateConfig checks the settings without which the service cannot run.
// Cache and SMTP are deliberately absent: both degrade gracefully.
func validateConfig(cfg *config.Config) error {
	if cfg.Database.Host == "" {
		return errors.New("database host is required (QR_DB_HOST)")
	}
	if cfg.Database.Username == "" {
		return errors.New("database username is required (QR_DB_USERNAME)")
	}
	if cfg.Database.Database == "" {
		return errors.New("database name is required (QR_DB_NAME)")
	}
	if cfg.Gateway.SecretKey == "" {
		return errors.New("gateway secret key is required (QR_GATEWAY_SECRET_KEY)")
	}
	if cfg.Gateway.WebhookSecret == "" {
		return errors.New("gateway webhook secret is required (QR_GATEWAY_WEBHOOK_SECRET)")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT secret is required (QR_JWT_SECRET)")
	}
	if cfg.Frontend.BaseURL == "" {
		return errors.New("frontend base URL is required (QR_FRONTEND_BASE_URL)")
	}
	return nil
}
