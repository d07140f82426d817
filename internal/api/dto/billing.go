package dto

import (
	"time"

	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/types"
)

// CreateCheckoutRequest asks for a subscription checkout session.
type CreateCheckoutRequest struct {
	Tier        string `json:"tier" binding:"required" validate:"required"`
	SuccessPath string `json:"success_path,omitempty"`
	CancelPath  string `json:"cancel_path,omitempty"`
}

// CheckoutResponse carries the redirect target for a checkout session.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PortalResponse carries the redirect target for a portal session.
type PortalResponse struct {
	URL string `json:"url"`
}

// SubscriptionStatusResponse is the billing view of a tenant.
type SubscriptionStatusResponse struct {
	TenantID           string                   `json:"tenant_id"`
	Tier               types.SubscriptionTier   `json:"tier"`
	Status             types.TenantStatus       `json:"status"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	SubscriptionID     string                   `json:"subscription_id,omitempty"`
	PeriodEnd          string                   `json:"subscription_period_end,omitempty"`
	PaymentCustomerID  string                   `json:"payment_customer_id,omitempty"`
}

// NewSubscriptionStatusResponse builds the status view from a tenant.
func NewSubscriptionStatusResponse(t *tenant.Tenant) *SubscriptionStatusResponse {
	resp := &SubscriptionStatusResponse{
		TenantID:           t.ID,
		Tier:               t.Tier,
		Status:             t.Status,
		SubscriptionStatus: t.SubscriptionStatus,
		SubscriptionID:     t.SubscriptionID,
		PaymentCustomerID:  t.PaymentCustomerID,
	}
	if resp.SubscriptionStatus == "" {
		resp.SubscriptionStatus = types.SubscriptionStatusNone
	}
	if t.PeriodEnd != nil {
		resp.PeriodEnd = t.PeriodEnd.UTC().Format(time.RFC3339)
	}
	return resp
}
