package service

import (
	"context"

	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/audit"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/domain/usage"
	"github.com/zeroechelon/outpost/internal/integration/stripe"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/types"
)

// PaymentProvider is the payment collaborator as seen by the services.
// The Stripe client satisfies it; tests substitute a stub.
type PaymentProvider interface {
	PriceForTier(tier types.SubscriptionTier) (string, error)
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string, metadata map[string]string) (*stripe.Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripe.Session, error)
	VerifyAndParseWebhook(payload []byte, signature string) (*events.WebhookEvent, error)
	ReportUsage(ctx context.Context, customerID string, operationID string) error
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	TenantRepo tenant.Repository
	UsageRepo  usage.Repository
	EventRepo  events.Repository

	// Collaborators
	Provider PaymentProvider
	Audit    audit.Logger
}
