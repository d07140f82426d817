package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/zeroechelon/outpost/internal/api"
	v1 "github.com/zeroechelon/outpost/internal/api/v1"
	"github.com/zeroechelon/outpost/internal/cache"
	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/audit"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/domain/usage"
	"github.com/zeroechelon/outpost/internal/dynamodb"
	"github.com/zeroechelon/outpost/internal/integration/stripe"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/repository"
	"github.com/zeroechelon/outpost/internal/sentry"
	"github.com/zeroechelon/outpost/internal/service"
	"github.com/zeroechelon/outpost/internal/types"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Local development reads credentials from .env; deployed modes get
	// everything from the environment.
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			provideLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.NewInMemoryCache,

			// DynamoDB
			dynamodb.NewClient,

			// Repositories
			repository.NewTenantRepository,
			repository.NewUsageRepository,
			repository.NewProcessedEventRepository,

			// Payment provider
			stripe.NewClient,
			provideProvider,

			// Audit
			service.NewAuditLogger,

			// Services
			provideServiceParams,
			service.NewBillingService,
			service.NewMeteringService,
			service.NewWebhookService,

			// HTTP
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app.Run()
}

func provideLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(cfg.Logging.Level)
}

func provideProvider(client *stripe.Client) service.PaymentProvider {
	return client
}

func provideServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	tenantRepo tenant.Repository,
	usageRepo usage.Repository,
	eventRepo events.Repository,
	provider service.PaymentProvider,
	auditLogger audit.Logger,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:     log,
		Config:     cfg,
		TenantRepo: tenantRepo,
		UsageRepo:  usageRepo,
		EventRepo:  eventRepo,
		Provider:   provider,
		Audit:      auditLogger,
	}
}

func provideHandlers(
	log *logger.Logger,
	billingService service.BillingService,
	meteringService service.MeteringService,
	webhookService service.WebhookService,
	provider service.PaymentProvider,
) api.Handlers {
	return api.Handlers{
		Billing: v1.NewBillingHandler(billingService, meteringService, log),
		Webhook: v1.NewWebhookHandler(webhookService, provider, log),
		Health:  v1.NewHealthHandler(),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
