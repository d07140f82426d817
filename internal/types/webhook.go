package types

// WebhookEventType is the closed set of subscription lifecycle events the
// reconciler knows how to dispatch. Adding a lifecycle event means adding
// a constant here and a case to the reconciler's switch; anything outside
// the set is acknowledged as ignored so the provider stops redelivering.
type WebhookEventType string

const (
	WebhookEventSubscriptionCreated WebhookEventType = "subscription.created"
	WebhookEventSubscriptionUpdated WebhookEventType = "subscription.updated"
	WebhookEventSubscriptionDeleted WebhookEventType = "subscription.deleted"
	WebhookEventPaymentSucceeded    WebhookEventType = "payment.succeeded"
	WebhookEventPaymentFailed       WebhookEventType = "payment.failed"
	WebhookEventCheckoutCompleted   WebhookEventType = "checkout.completed"
)

// IsRegistered reports whether the event type has a registered transition.
func (t WebhookEventType) IsRegistered() bool {
	switch t {
	case WebhookEventSubscriptionCreated,
		WebhookEventSubscriptionUpdated,
		WebhookEventSubscriptionDeleted,
		WebhookEventPaymentSucceeded,
		WebhookEventPaymentFailed,
		WebhookEventCheckoutCompleted:
		return true
	default:
		return false
	}
}

// ProcessingStatus is the terminal state of a single webhook delivery.
type ProcessingStatus string

const (
	ProcessingStatusProcessed ProcessingStatus = "processed"
	ProcessingStatusSkipped   ProcessingStatus = "skipped"
	ProcessingStatusIgnored   ProcessingStatus = "ignored"
	ProcessingStatusError     ProcessingStatus = "error"
)
