package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/zeroechelon/outpost/internal/api/v1"
	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/rest/middleware"
)

type Handlers struct {
	Billing *v1.BillingHandler
	Webhook *v1.WebhookHandler
	Health  *v1.HealthHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// Webhook deliveries authenticate by signature, not tenant identity.
	router.POST("/webhooks/stripe", handlers.Webhook.HandleStripeWebhook)

	v1Group := router.Group("/v1", middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/checkout", handlers.Billing.CreateCheckout)
		billing.GET("/portal", handlers.Billing.GetPortal)
		billing.GET("/status", handlers.Billing.GetStatus)
		billing.GET("/usage", handlers.Billing.GetUsage)
		billing.GET("/usage/history", handlers.Billing.GetUsageHistory)
		billing.POST("/usage/reset", handlers.Billing.ResetUsage)
	}
}
