package api

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"billing-backend-go/internal/config"
	"billing-backend-go/internal/core"
	"billing-backend-go/internal/middleware"
)

// SetupRoutes configures all application routes. Global middleware (logging,
// recovery, CORS) is applied to the router before this is called, in main.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	firebaseAuthClient *auth.Client,
	userService core.UserService,
	billingService core.BillingService,
) {
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, logger)

	authHandler := NewAuthHandler(userService, logger)
	userHandler := NewUserHandler(userService, logger)
	billingHandler := NewBillingHandler(billingService, logger)

	apiV1 := router.Group("/api/v1")
	{
		userRouteGroup := apiV1.Group("/users")
		{
			// Called after client-side Firebase login/signup to ensure the
			// backend profile (and Stripe customer) exists.
			userRouteGroup.POST("/initialize", authMW.VerifyToken(), authHandler.InitializeUserProfile)
			userRouteGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)
		}

		billingRouteGroup := apiV1.Group("/billing")
		{
			billingRouteGroup.POST("/create-checkout-session", authMW.VerifyToken(), billingHandler.CreateCheckoutSession)
			billingRouteGroup.POST("/create-portal-session", authMW.VerifyToken(), billingHandler.CreatePortalSession)

			// Public webhook endpoint; Stripe authenticates deliveries via
			// signature, verified in the billing service.
			billingRouteGroup.POST("/webhooks/stripe", billingHandler.HandleStripeWebhook)
		}
	}

	// Relay to the legacy functions deployment, only when configured.
	if appConfig.FunctionsBaseURL != "" {
		relayHandler := NewRelayHandler(appConfig.FunctionsBaseURL, logger)
		router.POST("/api/functions/create-checkout-session", relayHandler.CreateCheckoutSession)
		logger.Info("Billing functions relay enabled", zap.String("baseURL", appConfig.FunctionsBaseURL))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
