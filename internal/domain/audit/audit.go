package audit

import (
	"context"
	"time"
)

// Action names recorded on the audit trail.
const (
	ActionCreateCustomer       = "CREATE_STRIPE_CUSTOMER"
	ActionCreateCheckout       = "CREATE_CHECKOUT_SESSION"
	ActionCreatePortalSession  = "CREATE_PORTAL_SESSION"
	ActionAccessBillingPortal  = "ACCESS_BILLING_PORTAL"
	ActionSubscriptionUpdate   = "SUBSCRIPTION_STATUS_UPDATE"
	ActionPaymentSuccess       = "PAYMENT_SUCCESS"
	ActionPaymentFailed        = "PAYMENT_FAILED"
	ActionCheckoutCompleted    = "CHECKOUT_COMPLETED"
	ActionUsageReset           = "USAGE_RESET"
	ActionUnknownCustomerEvent = "UNKNOWN_CUSTOMER_EVENT"
)

// Entry is one audit record.
type Entry struct {
	ID       string            `json:"id"`
	TenantID string            `json:"tenant_id"`
	Action   string            `json:"action"`
	Resource string            `json:"resource,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	At       time.Time         `json:"at"`
}

// Logger is the write-only audit sink. Persistence is outside the billing
// core; implementations must never fail the calling operation.
type Logger interface {
	Log(ctx context.Context, entry Entry)
}
