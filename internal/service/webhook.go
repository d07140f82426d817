package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zeroechelon/outpost/internal/domain/audit"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

// WebhookService reconciles lifecycle events delivered by the payment
// provider. Delivery is at least once and possibly reordered, so every
// transition is an idempotent upsert and completion is recorded in a
// durable marker keyed on the event id.
type WebhookService interface {
	// ProcessEvent applies one delivery. The returned result is always
	// non-nil; err is non-nil only when the transition did not land, in
	// which case no processed marker was written and a redelivery will
	// retry it.
	ProcessEvent(ctx context.Context, event *events.WebhookEvent) (*events.ProcessingResult, error)
}

type webhookService struct {
	ServiceParams
	billing BillingService
}

func NewWebhookService(params ServiceParams, billing BillingService) WebhookService {
	return &webhookService{ServiceParams: params, billing: billing}
}

func (s *webhookService) ProcessEvent(ctx context.Context, event *events.WebhookEvent) (*events.ProcessingResult, error) {
	if event.EventID == "" {
		return errorResult(event, "event id is required"),
			ierr.NewError("event id is required").
				WithHint("Event identity is missing").
				Mark(ierr.ErrValidation)
	}

	processed, err := s.EventRepo.IsProcessed(ctx, event.EventID)
	if err != nil {
		return errorResult(event, "idempotency lookup failed"), err
	}
	if processed {
		s.Logger.Infow("skipping already processed event",
			"event_id", event.EventID,
			"event_type", event.Type)
		return &events.ProcessingResult{
			Status:    types.ProcessingStatusSkipped,
			EventID:   event.EventID,
			EventType: event.Type,
			Reason:    "already processed",
		}, nil
	}

	if !event.Type.IsRegistered() {
		// Acknowledge so the provider stops redelivering; there is no
		// transition to apply, now or on retry.
		if _, err := s.markProcessed(ctx, event); err != nil {
			return errorResult(event, "failed to record marker"), err
		}
		return &events.ProcessingResult{
			Status:    types.ProcessingStatusIgnored,
			EventID:   event.EventID,
			EventType: event.Type,
			Reason:    "unregistered event type",
		}, nil
	}

	if err := s.dispatch(ctx, event); err != nil {
		// No marker: the provider must redeliver until the transition
		// lands.
		s.Logger.Errorw("event handler failed",
			"event_id", event.EventID,
			"event_type", event.Type,
			"error", err)
		return errorResult(event, "handler failed"),
			ierr.WithError(err).
				WithHintf("Handler for %s failed", event.Type).
				WithReportableDetails(map[string]any{
					"event_id":   event.EventID,
					"event_type": event.Type,
				}).
				Mark(ierr.ErrHandlerFailure)
	}

	inserted, err := s.markProcessed(ctx, event)
	if err != nil {
		return errorResult(event, "failed to record marker"), err
	}
	if !inserted {
		// A concurrent delivery finished first. The transitions are
		// idempotent, so applying them twice is harmless; report the
		// duplicate.
		return &events.ProcessingResult{
			Status:    types.ProcessingStatusSkipped,
			EventID:   event.EventID,
			EventType: event.Type,
			Reason:    "concurrent delivery won",
		}, nil
	}

	return &events.ProcessingResult{
		Status:    types.ProcessingStatusProcessed,
		EventID:   event.EventID,
		EventType: event.Type,
	}, nil
}

func (s *webhookService) dispatch(ctx context.Context, event *events.WebhookEvent) error {
	switch event.Type {
	case types.WebhookEventSubscriptionCreated,
		types.WebhookEventSubscriptionUpdated,
		types.WebhookEventSubscriptionDeleted:
		var payload events.SubscriptionPayload
		if err := unmarshalPayload(event, &payload); err != nil {
			return err
		}
		if event.Type == types.WebhookEventSubscriptionDeleted {
			// A deleted subscription is canceled whatever status the
			// payload snapshot carries.
			payload.Status = types.SubscriptionStatusCanceled
		}
		t, ok, err := s.resolveTenant(ctx, event, payload.CustomerID)
		if err != nil || !ok {
			return err
		}
		return s.billing.UpsertSubscription(ctx, t, &payload)

	case types.WebhookEventPaymentSucceeded:
		var payload events.InvoicePayload
		if err := unmarshalPayload(event, &payload); err != nil {
			return err
		}
		t, ok, err := s.resolveTenant(ctx, event, payload.CustomerID)
		if err != nil || !ok {
			return err
		}
		return s.billing.RecordPaymentSuccess(ctx, t, &payload)

	case types.WebhookEventPaymentFailed:
		var payload events.InvoicePayload
		if err := unmarshalPayload(event, &payload); err != nil {
			return err
		}
		t, ok, err := s.resolveTenant(ctx, event, payload.CustomerID)
		if err != nil || !ok {
			return err
		}
		return s.billing.RecordPaymentFailure(ctx, t, &payload)

	case types.WebhookEventCheckoutCompleted:
		var payload events.CheckoutPayload
		if err := unmarshalPayload(event, &payload); err != nil {
			return err
		}
		// The tenant identity stamped into the session metadata at
		// checkout creation keys the audit record; the customer lookup
		// is only a fallback for sessions created elsewhere.
		tenantID := event.Metadata["tenant_id"]
		if tenantID == "" {
			t, ok, err := s.resolveTenant(ctx, event, payload.CustomerID)
			if err != nil || !ok {
				return err
			}
			tenantID = t.ID
		}
		return s.billing.RecordCheckoutCompleted(ctx, tenantID, &payload)

	default:
		// Unreachable behind IsRegistered.
		return ierr.NewError("no handler registered").
			WithHintf("Event type %s has no handler", event.Type).
			Mark(ierr.ErrSystem)
	}
}

// resolveTenant maps the provider customer id onto a tenant. A customer
// with no tenant is not an error: the event is for an identity this
// system never provisioned (a deleted tenant, or another environment
// sharing the provider account), and retrying will never change that.
func (s *webhookService) resolveTenant(ctx context.Context, event *events.WebhookEvent, customerID string) (*tenant.Tenant, bool, error) {
	if customerID == "" {
		return nil, false, ierr.NewError("event payload missing customer id").
			WithHint("Malformed event payload").
			Mark(ierr.ErrValidation)
	}

	t, err := s.TenantRepo.GetByPaymentCustomerID(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("no tenant for payment customer, acknowledging event",
				"event_id", event.EventID,
				"event_type", event.Type,
				"customer_id", customerID)
			s.Audit.Log(ctx, audit.Entry{
				Action:   audit.ActionUnknownCustomerEvent,
				Resource: customerID,
				Metadata: map[string]string{
					"event_id":   event.EventID,
					"event_type": string(event.Type),
				},
			})
			return nil, false, nil
		}
		return nil, false, err
	}
	return t, true, nil
}

func (s *webhookService) markProcessed(ctx context.Context, event *events.WebhookEvent) (bool, error) {
	return s.EventRepo.MarkProcessed(ctx, &events.ProcessedMarker{
		EventID:     event.EventID,
		EventType:   event.Type,
		ProcessedAt: time.Now().UTC(),
	})
}

func unmarshalPayload(event *events.WebhookEvent, out any) error {
	if err := json.Unmarshal(event.Payload, out); err != nil {
		return ierr.WithError(err).
			WithHintf("Malformed %s payload", event.Type).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func errorResult(event *events.WebhookEvent, reason string) *events.ProcessingResult {
	return &events.ProcessingResult{
		Status:    types.ProcessingStatusError,
		EventID:   event.EventID,
		EventType: event.Type,
		Reason:    reason,
	}
}
