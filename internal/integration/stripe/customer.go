package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	ierr "github.com/zeroechelon/outpost/internal/errors"
)

// CreateCustomer creates a Stripe customer for a tenant and returns the
// customer id. Metadata carries the tenant identity for reverse lookups
// from the provider dashboard.
func (c *Client) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerCreateParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: metadata,
	}

	customer, err := c.api.V1Customers.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe customer",
			"error", err,
			"email", email)
		return "", ierr.WithError(err).
			WithHint("Unable to create payment customer").
			Mark(ierr.ErrSystem)
	}

	c.logger.Infow("created Stripe customer",
		"customer_id", customer.ID,
		"email", email)
	return customer.ID, nil
}
