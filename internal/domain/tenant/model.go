package tenant

import (
	"time"

	"github.com/zeroechelon/outpost/internal/types"
)

// Tenant is the billing view of an organization. Created by tenant
// provisioning outside this core; mutated only by the event reconciler;
// never deleted here.
type Tenant struct {
	ID     string                 `json:"tenant_id" dynamodbav:"tenant_id"`
	Name   string                 `json:"name" dynamodbav:"name"`
	Email  string                 `json:"email" dynamodbav:"email"`
	Tier   types.SubscriptionTier `json:"subscription_tier" dynamodbav:"subscription_tier"`
	Status types.TenantStatus     `json:"status" dynamodbav:"status"`

	// Provider-reported subscription state, stored verbatim.
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status" dynamodbav:"subscription_status"`
	SubscriptionID     string                   `json:"subscription_id,omitempty" dynamodbav:"subscription_id,omitempty"`
	// PaymentCustomerID is the provider customer identity; lifecycle
	// events reference tenants through it, never through the tenant id.
	PaymentCustomerID string     `json:"payment_customer_id,omitempty" dynamodbav:"payment_customer_id,omitempty"`
	PeriodEnd         *time.Time `json:"subscription_period_end,omitempty" dynamodbav:"subscription_period_end,omitempty"`
	LastPaymentAt     *time.Time `json:"last_payment_at,omitempty" dynamodbav:"last_payment_at,omitempty"`

	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// SubscriptionUpdate carries the fields a lifecycle event may upsert onto
// a tenant. Nil pointers leave the stored value untouched.
type SubscriptionUpdate struct {
	SubscriptionStatus types.SubscriptionStatus
	SubscriptionID     string
	PeriodEnd          *time.Time
	// Status is written only when it differs from the stored tenant
	// status, to avoid spurious writes.
	Status types.TenantStatus
}
