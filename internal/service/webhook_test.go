package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/testutil"
	"github.com/zeroechelon/outpost/internal/types"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookService
	billing BillingService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.params()
	s.billing = NewBillingService(params)
	s.service = NewWebhookService(params, s.billing)
}

func (s *WebhookServiceSuite) params() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		TenantRepo: stores.TenantRepo,
		UsageRepo:  stores.UsageRepo,
		EventRepo:  stores.EventRepo,
		Provider:   s.GetProvider(),
		Audit:      s.GetAudit(),
	}
}

func (s *WebhookServiceSuite) seedTenant() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:                "tenant-1",
		Name:              "Acme",
		Email:             "billing@acme.test",
		Tier:              types.SubscriptionTierPro,
		Status:            types.TenantStatusActive,
		PaymentCustomerID: "cus_acme",
	})
}

func subscriptionEvent(id string, eventType types.WebhookEventType, status types.SubscriptionStatus) *events.WebhookEvent {
	payload, _ := json.Marshal(events.SubscriptionPayload{
		SubscriptionID:   "sub_123",
		CustomerID:       "cus_acme",
		Status:           status,
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour).Unix(),
	})
	return &events.WebhookEvent{
		EventID: id,
		Type:    eventType,
		Payload: payload,
	}
}

func invoiceEvent(id string, eventType types.WebhookEventType) *events.WebhookEvent {
	payload, _ := json.Marshal(events.InvoicePayload{
		InvoiceID:    "in_123",
		CustomerID:   "cus_acme",
		AmountPaid:   2900,
		Currency:     "usd",
		AttemptCount: 1,
	})
	return &events.WebhookEvent{
		EventID: id,
		Type:    eventType,
		Payload: payload,
	}
}

func (s *WebhookServiceSuite) TestSubscriptionUpdatedApplied() {
	s.seedTenant()

	event := subscriptionEvent("evt_1", types.WebhookEventSubscriptionUpdated, types.SubscriptionStatusActive)
	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)
	s.True(s.GetEventStore().HasMarker("evt_1"))

	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, t.SubscriptionStatus)
	s.Equal("sub_123", t.SubscriptionID)
	s.NotNil(t.PeriodEnd)
}

func (s *WebhookServiceSuite) TestDuplicateEventSkipped() {
	s.seedTenant()

	event := subscriptionEvent("evt_1", types.WebhookEventSubscriptionUpdated, types.SubscriptionStatusActive)
	_, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusSkipped, result.Status)
}

func (s *WebhookServiceSuite) TestUnregisteredEventIgnoredAndMarked() {
	event := &events.WebhookEvent{
		EventID: "evt_unknown",
		Type:    types.WebhookEventType("invoice.finalized"),
		Payload: json.RawMessage(`{}`),
	}

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusIgnored, result.Status)
	// Marked so the provider stops redelivering.
	s.True(s.GetEventStore().HasMarker("evt_unknown"))
}

func (s *WebhookServiceSuite) TestUnknownCustomerAcknowledged() {
	// No tenant seeded: the customer resolves to nothing.
	event := subscriptionEvent("evt_1", types.WebhookEventSubscriptionUpdated, types.SubscriptionStatusActive)

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)
	s.True(s.GetEventStore().HasMarker("evt_1"))
	s.True(s.GetAudit().HasAction("UNKNOWN_CUSTOMER_EVENT"))
}

func (s *WebhookServiceSuite) TestMalformedPayloadNoMarker() {
	s.seedTenant()

	event := &events.WebhookEvent{
		EventID: "evt_bad",
		Type:    types.WebhookEventSubscriptionUpdated,
		Payload: json.RawMessage(`{not json`),
	}

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.Error(err)
	s.True(ierr.IsHandlerFailure(err))
	s.Equal(types.ProcessingStatusError, result.Status)
	// No marker: the provider must redeliver.
	s.False(s.GetEventStore().HasMarker("evt_bad"))
}

func (s *WebhookServiceSuite) TestSubscriptionDeletedSuspendsTenant() {
	s.seedTenant()

	event := subscriptionEvent("evt_1", types.WebhookEventSubscriptionDeleted, types.SubscriptionStatusCanceled)
	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)

	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.TenantStatusSuspended, t.Status)
	s.Equal(types.SubscriptionStatusCanceled, t.SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestPaymentSucceededMarksPayment() {
	s.seedTenant()

	event := invoiceEvent("evt_1", types.WebhookEventPaymentSucceeded)
	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)

	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.NotNil(t.LastPaymentAt)
	s.True(s.GetAudit().HasAction("PAYMENT_SUCCESS"))
}

func (s *WebhookServiceSuite) TestPaymentFailedAuditedOnly() {
	s.seedTenant()

	event := invoiceEvent("evt_1", types.WebhookEventPaymentFailed)
	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)

	// A failed attempt alone does not suspend.
	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.TenantStatusActive, t.Status)
	s.True(s.GetAudit().HasAction("PAYMENT_FAILED"))
}

func (s *WebhookServiceSuite) TestCheckoutCompletedAuditOnly() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:                "tenant-1",
		Status:            types.TenantStatusActive,
		PaymentCustomerID: "cus_acme",
	})

	payload, _ := json.Marshal(events.CheckoutPayload{
		SessionID:      "cs_123",
		CustomerID:     "cus_acme",
		SubscriptionID: "sub_456",
	})
	event := &events.WebhookEvent{
		EventID:  "evt_1",
		Type:     types.WebhookEventCheckoutCompleted,
		Payload:  payload,
		Metadata: map[string]string{"tenant_id": "tenant-1"},
	}

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)
	s.True(s.GetEventStore().HasMarker("evt_1"))

	// The subscription.created event that follows is authoritative;
	// checkout completion must leave billing state untouched.
	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Empty(t.SubscriptionID)
	s.Empty(t.SubscriptionStatus)
	s.Equal(types.TenantStatusActive, t.Status)

	entries := s.GetAudit().Entries()
	s.Require().Len(entries, 1)
	s.Equal("CHECKOUT_COMPLETED", entries[0].Action)
	s.Equal("tenant-1", entries[0].TenantID)
	s.Equal("cs_123", entries[0].Resource)
}

func (s *WebhookServiceSuite) TestCheckoutCompletedWithoutMetadataFallsBackToCustomer() {
	s.seedTenant()

	payload, _ := json.Marshal(events.CheckoutPayload{
		SessionID:  "cs_456",
		CustomerID: "cus_acme",
	})
	event := &events.WebhookEvent{
		EventID: "evt_2",
		Type:    types.WebhookEventCheckoutCompleted,
		Payload: payload,
	}

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.NoError(err)
	s.Equal(types.ProcessingStatusProcessed, result.Status)
	s.True(s.GetAudit().HasAction("CHECKOUT_COMPLETED"))
}

func (s *WebhookServiceSuite) TestRedeliveryAfterReprocessingIsIdempotent() {
	s.seedTenant()

	// Same transition twice with distinct event ids: the upsert must
	// settle on the same state.
	for _, id := range []string{"evt_1", "evt_2"} {
		event := subscriptionEvent(id, types.WebhookEventSubscriptionUpdated, types.SubscriptionStatusPastDue)
		_, err := s.service.ProcessEvent(s.GetContext(), event)
		s.NoError(err)
	}

	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, t.SubscriptionStatus)
	s.Equal(types.TenantStatusActive, t.Status)
}

func (s *WebhookServiceSuite) TestMissingEventIDRejected() {
	event := &events.WebhookEvent{
		Type:    types.WebhookEventPaymentSucceeded,
		Payload: json.RawMessage(`{}`),
	}

	result, err := s.service.ProcessEvent(s.GetContext(), event)
	s.Error(err)
	s.Equal(types.ProcessingStatusError, result.Status)
}
