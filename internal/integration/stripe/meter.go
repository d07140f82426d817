package stripe

import (
	"context"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"

	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/idempotency"
)

// ReportUsage forwards one metered operation to Stripe billing meters.
// Callers treat failures as non-fatal: usage is already durably recorded
// locally by the time this runs.
func (c *Client) ReportUsage(ctx context.Context, customerID string, operationID string) error {
	if !c.cfg.MeteringEnabled || customerID == "" {
		return nil
	}

	// The identifier is derived from the operation identity so provider
	// retries cannot double-bill a single operation.
	identifier := c.idempotency.GenerateKey(idempotency.ScopeMeterEvent, map[string]interface{}{
		"customer_id":  customerID,
		"operation_id": operationID,
	})

	params := &stripe.BillingMeterEventCreateParams{
		EventName:  stripe.String(c.cfg.MeterEventName),
		Identifier: stripe.String(identifier),
		Timestamp:  stripe.Int64(time.Now().UTC().Unix()),
		Payload: map[string]string{
			"stripe_customer_id": customerID,
			"value":              strconv.Itoa(1),
		},
	}

	if _, err := c.api.V1BillingMeterEvents.Create(ctx, params); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to report metered usage").
			Mark(ierr.ErrSystem)
	}
	return nil
}
