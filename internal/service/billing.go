package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeroechelon/outpost/internal/api/dto"
	"github.com/zeroechelon/outpost/internal/domain/audit"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
	"github.com/zeroechelon/outpost/internal/validator"
)

// BillingService provisions payment-provider resources for tenants and
// applies subscription state transitions reported by lifecycle events.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, tenantID string, req *dto.CreateCheckoutRequest) (*dto.CheckoutResponse, error)
	CreatePortalSession(ctx context.Context, tenantID string) (*dto.PortalResponse, error)
	GetSubscriptionStatus(ctx context.Context, tenantID string) (*dto.SubscriptionStatusResponse, error)

	// Transitions. Called by the event reconciler with a resolved tenant;
	// each is an idempotent upsert safe under redelivery and reordering.
	UpsertSubscription(ctx context.Context, t *tenant.Tenant, payload *events.SubscriptionPayload) error
	RecordPaymentSuccess(ctx context.Context, t *tenant.Tenant, payload *events.InvoicePayload) error
	RecordPaymentFailure(ctx context.Context, t *tenant.Tenant, payload *events.InvoicePayload) error
	RecordCheckoutCompleted(ctx context.Context, tenantID string, payload *events.CheckoutPayload) error
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, tenantID string, req *dto.CreateCheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	tier, err := types.ParseSubscriptionTier(req.Tier)
	if err != nil {
		return nil, err
	}

	priceID, err := s.Provider.PriceForTier(tier)
	if err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, t)
	if err != nil {
		return nil, err
	}

	session, err := s.Provider.CreateCheckoutSession(ctx,
		customerID,
		priceID,
		s.frontendURL(req.SuccessPath, "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		s.frontendURL(req.CancelPath, "/billing/cancel"),
		map[string]string{
			"tenant_id": tenantID,
			"tier":      string(tier),
		})
	if err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionCreateCheckout,
		Resource: session.ID,
		Metadata: map[string]string{"tier": string(tier)},
	})

	return &dto.CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

func (s *billingService) CreatePortalSession(ctx context.Context, tenantID string) (*dto.PortalResponse, error) {
	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, t)
	if err != nil {
		return nil, err
	}

	session, err := s.Provider.CreatePortalSession(ctx, customerID, s.frontendURL("", "/billing"))
	if err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionAccessBillingPortal,
		Resource: customerID,
	})

	return &dto.PortalResponse{URL: session.URL}, nil
}

func (s *billingService) GetSubscriptionStatus(ctx context.Context, tenantID string) (*dto.SubscriptionStatusResponse, error) {
	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionStatusResponse(t), nil
}

func (s *billingService) UpsertSubscription(ctx context.Context, t *tenant.Tenant, payload *events.SubscriptionPayload) error {
	if payload.SubscriptionID == "" {
		return ierr.NewError("subscription payload missing id").
			WithHint("Malformed subscription event payload").
			Mark(ierr.ErrValidation)
	}

	update := tenant.SubscriptionUpdate{
		SubscriptionStatus: payload.Status,
		SubscriptionID:     payload.SubscriptionID,
	}
	if payload.CurrentPeriodEnd > 0 {
		end := time.Unix(payload.CurrentPeriodEnd, 0).UTC()
		update.PeriodEnd = &end
	}

	// The tenant status write is skipped when the derived value matches,
	// so redelivered events settle without touching the item.
	derived := types.DeriveTenantStatus(payload.Status)
	if derived != t.Status {
		update.Status = derived
	}

	if err := s.TenantRepo.ApplySubscriptionUpdate(ctx, t.ID, update); err != nil {
		return err
	}

	s.Audit.Log(ctx, audit.Entry{
		TenantID: t.ID,
		Action:   audit.ActionSubscriptionUpdate,
		Resource: payload.SubscriptionID,
		Metadata: map[string]string{
			"subscription_status": string(payload.Status),
			"tenant_status":       string(derived),
		},
	})
	return nil
}

func (s *billingService) RecordPaymentSuccess(ctx context.Context, t *tenant.Tenant, payload *events.InvoicePayload) error {
	if err := s.TenantRepo.MarkPaymentReceived(ctx, t.ID, time.Now().UTC()); err != nil {
		return err
	}

	s.Audit.Log(ctx, audit.Entry{
		TenantID: t.ID,
		Action:   audit.ActionPaymentSuccess,
		Resource: payload.InvoiceID,
		Metadata: map[string]string{
			"amount_paid": fmt.Sprintf("%d", payload.AmountPaid),
			"currency":    payload.Currency,
		},
	})
	return nil
}

func (s *billingService) RecordPaymentFailure(ctx context.Context, t *tenant.Tenant, payload *events.InvoicePayload) error {
	// Suspension is driven by the subscription status transitions the
	// provider emits alongside, not by a single failed attempt.
	s.Logger.Warnw("payment failed for tenant",
		"tenant_id", t.ID,
		"invoice_id", payload.InvoiceID,
		"attempt_count", payload.AttemptCount)

	s.Audit.Log(ctx, audit.Entry{
		TenantID: t.ID,
		Action:   audit.ActionPaymentFailed,
		Resource: payload.InvoiceID,
		Metadata: map[string]string{
			"attempt_count": fmt.Sprintf("%d", payload.AttemptCount),
		},
	})
	return nil
}

// RecordCheckoutCompleted emits the audit record for a completed
// checkout. The paired subscription.created event is the authoritative
// source of subscription state, so no billing fields are written here.
func (s *billingService) RecordCheckoutCompleted(ctx context.Context, tenantID string, payload *events.CheckoutPayload) error {
	metadata := map[string]string{}
	if payload.SubscriptionID != "" {
		metadata["subscription_id"] = payload.SubscriptionID
	}

	s.Audit.Log(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionCheckoutCompleted,
		Resource: payload.SessionID,
		Metadata: metadata,
	})
	return nil
}

// ensureCustomer returns the tenant's provider customer id, creating the
// customer on first use.
func (s *billingService) ensureCustomer(ctx context.Context, t *tenant.Tenant) (string, error) {
	if t.PaymentCustomerID != "" {
		return t.PaymentCustomerID, nil
	}

	customerID, err := s.Provider.CreateCustomer(ctx, t.Email, t.Name, map[string]string{
		"tenant_id": t.ID,
	})
	if err != nil {
		return "", err
	}

	if err := s.TenantRepo.SetPaymentCustomerID(ctx, t.ID, customerID); err != nil {
		return "", err
	}
	t.PaymentCustomerID = customerID

	s.Audit.Log(ctx, audit.Entry{
		TenantID: t.ID,
		Action:   audit.ActionCreateCustomer,
		Resource: customerID,
	})
	return customerID, nil
}

func (s *billingService) frontendURL(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	base := strings.TrimRight(s.Config.Server.AppURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
