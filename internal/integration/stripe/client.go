package stripe

import (
	"github.com/stripe/stripe-go/v82"

	"github.com/zeroechelon/outpost/internal/config"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/idempotency"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/types"
)

// Client wraps the Stripe API for the billing core: customers, checkout
// and portal sessions, webhook verification and metered-usage reporting.
type Client struct {
	cfg         config.StripeConfig
	api         *stripe.Client
	idempotency *idempotency.Generator
	logger      *logger.Logger
}

// NewClient creates a configured Stripe client. Credentials and the
// tier-to-price table arrive through the explicit configuration struct,
// never through process-wide state.
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		cfg:         cfg.Stripe,
		api:         stripe.NewClient(cfg.Stripe.SecretKey, nil),
		idempotency: idempotency.NewGenerator(),
		logger:      logger,
	}
}

// PriceForTier resolves the Stripe price id for a subscription tier.
func (c *Client) PriceForTier(tier types.SubscriptionTier) (string, error) {
	priceID, ok := c.cfg.Prices[string(tier)]
	if !ok || priceID == "" {
		return "", ierr.NewError("no price configured for tier").
			WithHintf("Invalid tier: %s", tier).
			WithReportableDetails(map[string]any{"tier": tier}).
			Mark(ierr.ErrValidation)
	}
	return priceID, nil
}
