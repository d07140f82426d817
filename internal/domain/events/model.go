package events

import (
	"encoding/json"
	"time"

	"github.com/zeroechelon/outpost/internal/types"
)

// WebhookEvent is a normalized lifecycle event from the payment provider.
// Delivery is at least once and possibly out of order; EventID is the
// identity idempotency is keyed on.
type WebhookEvent struct {
	EventID  string                 `json:"event_id"`
	Type     types.WebhookEventType `json:"event_type"`
	Payload  json.RawMessage        `json:"payload"`
	Metadata map[string]string      `json:"metadata,omitempty"`
}

// ProcessedMarker records that an event's side effects have been fully
// applied at least once. Written only after successful processing, never
// on receipt alone.
type ProcessedMarker struct {
	EventID     string                 `json:"event_id" dynamodbav:"event_id"`
	EventType   types.WebhookEventType `json:"event_type" dynamodbav:"event_type"`
	ProcessedAt time.Time              `json:"processed_at" dynamodbav:"processed_at"`
}

// SubscriptionPayload is the payload shape shared by the subscription
// lifecycle events.
type SubscriptionPayload struct {
	SubscriptionID   string                   `json:"id"`
	CustomerID       string                   `json:"customer"`
	Status           types.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd int64                    `json:"current_period_end,omitempty"`
}

// InvoicePayload is the payload shape of the payment outcome events.
type InvoicePayload struct {
	InvoiceID    string `json:"id"`
	CustomerID   string `json:"customer"`
	AmountPaid   int64  `json:"amount_paid,omitempty"`
	Currency     string `json:"currency,omitempty"`
	AttemptCount int64  `json:"attempt_count,omitempty"`
}

// CheckoutPayload is the payload shape of checkout completion events.
type CheckoutPayload struct {
	SessionID      string `json:"id"`
	CustomerID     string `json:"customer"`
	SubscriptionID string `json:"subscription,omitempty"`
}

// ProcessingResult is the terminal outcome of one delivery attempt.
type ProcessingResult struct {
	Status    types.ProcessingStatus `json:"status"`
	EventID   string                 `json:"event_id"`
	EventType types.WebhookEventType `json:"event_type,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Error     string                 `json:"error,omitempty"`
}
