package stripe

import (
	"encoding/json"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/zeroechelon/outpost/internal/domain/events"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

// stripeEventTypes maps the provider's event names onto the lifecycle
// event set the reconciler dispatches on. Stripe types outside this table
// pass through verbatim and end up acknowledged as ignored.
var stripeEventTypes = map[string]types.WebhookEventType{
	"customer.subscription.created": types.WebhookEventSubscriptionCreated,
	"customer.subscription.updated": types.WebhookEventSubscriptionUpdated,
	"customer.subscription.deleted": types.WebhookEventSubscriptionDeleted,
	"invoice.payment_succeeded":     types.WebhookEventPaymentSucceeded,
	"invoice.payment_failed":        types.WebhookEventPaymentFailed,
	"checkout.session.completed":    types.WebhookEventCheckoutCompleted,
}

// VerifyAndParseWebhook checks the delivery signature against the
// endpoint secret and normalizes the event. Verification failure fails
// closed: no event is returned and nothing is processed.
func (c *Client) VerifyAndParseWebhook(payload []byte, signature string) (*events.WebhookEvent, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret, options)
	if err != nil {
		c.logger.Errorw("Stripe webhook verification failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Webhook signature verification failed").
			Mark(ierr.ErrSignatureInvalid)
	}

	eventType, ok := stripeEventTypes[string(event.Type)]
	if !ok {
		eventType = types.WebhookEventType(event.Type)
	}

	// Checkout sessions and subscriptions carry the metadata map stamped
	// at creation, including the tenant identity. Objects without one
	// just leave Metadata nil.
	var object struct {
		Metadata map[string]string `json:"metadata"`
	}
	_ = json.Unmarshal(event.Data.Raw, &object)

	return &events.WebhookEvent{
		EventID:  event.ID,
		Type:     eventType,
		Payload:  event.Data.Raw,
		Metadata: object.Metadata,
	}, nil
}
