package tenant

import (
	"context"
	"time"
)

// Repository is the tenant directory as seen by the billing core. Reads
// serve the quota ledger; writes come only from the event reconciler and
// customer provisioning.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
	// GetByPaymentCustomerID resolves a tenant by the payment provider
	// customer identity (secondary index lookup, at most one item).
	GetByPaymentCustomerID(ctx context.Context, customerID string) (*Tenant, error)
	// SetPaymentCustomerID stores the provider customer id after
	// auto-provisioning a customer for the tenant.
	SetPaymentCustomerID(ctx context.Context, id string, customerID string) error
	// ApplySubscriptionUpdate upserts the subscription fields carried by
	// a lifecycle event.
	ApplySubscriptionUpdate(ctx context.Context, id string, update SubscriptionUpdate) error
	// MarkPaymentReceived forces the tenant active and stamps the last
	// payment time without touching subscription fields.
	MarkPaymentReceived(ctx context.Context, id string, paidAt time.Time) error
}
