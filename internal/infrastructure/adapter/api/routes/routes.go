package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/handler"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API. The webhook and browser
// callbacks are public: the webhook authenticates with its signature, and the
// browser callbacks arrive from a customer mid-redirect with no token.
func SetupRoutes(
	router *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	callbackHandler *handler.CallbackHandler,
	healthHandler *handler.HealthHandler,
	jwtSecret string,
	logger coreport.Logger,
) {
	router.GET("/health", healthHandler.Check)

	payments := router.Group("/api/payments")
	{
		// Public gateway surfaces
		payments.POST("/webhook", callbackHandler.Webhook)
		payments.GET("/callback", callbackHandler.Callback)
		payments.GET("/callback/cod", callbackHandler.CashOnDelivery)
		payments.GET("/callback/error", callbackHandler.Error)

		// Authenticated customer surface
		authenticated := payments.Group("")
		authenticated.Use(middleware.Auth(jwtSecret, logger))
		{
			authenticated.POST("/initiate", paymentHandler.Initiate)
			authenticated.POST("/verify", paymentHandler.Verify)
			authenticated.POST("/authorize", paymentHandler.Authorize)
			authenticated.POST("/refund", paymentHandler.Refund)
			authenticated.POST("/cancel", paymentHandler.Cancel)
			authenticated.GET("/transaction-history", paymentHandler.History)
			authenticated.GET("/method-status", paymentHandler.MethodStatus)
			authenticated.POST("/verify-bvn", paymentHandler.VerifyBVN)
			authenticated.GET("/wallet/balance", paymentHandler.WalletBalance)
		}
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
