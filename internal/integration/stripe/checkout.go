package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	ierr "github.com/zeroechelon/outpost/internal/errors"
)

// Session is a checkout or portal session created at the provider; the
// URL is handed to the client for redirect.
type Session struct {
	ID  string `json:"session_id,omitempty"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a subscription checkout for the customer.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string, metadata map[string]string) (*Session, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata:   metadata,
	}

	session, err := c.api.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe checkout session",
			"error", err,
			"customer_id", customerID,
			"price_id", priceID)
		return nil, ierr.WithError(err).
			WithHint("Unable to create checkout session").
			Mark(ierr.ErrSystem)
	}

	return &Session{ID: session.ID, URL: session.URL}, nil
}

// CreatePortalSession opens a customer portal session for self-service
// subscription management.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error) {
	params := &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	if c.cfg.PortalConfigID != "" {
		params.Configuration = stripe.String(c.cfg.PortalConfigID)
	}

	session, err := c.api.V1BillingPortalSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe portal session",
			"error", err,
			"customer_id", customerID)
		return nil, ierr.WithError(err).
			WithHint("Unable to create billing portal session").
			Mark(ierr.ErrSystem)
	}

	return &Session{ID: session.ID, URL: session.URL}, nil
}
