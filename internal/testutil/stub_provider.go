package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/zeroechelon/outpost/internal/domain/events"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/integration/stripe"
	"github.com/zeroechelon/outpost/internal/types"
)

// StubPaymentProvider is a scripted payment provider for service tests.
// Every call succeeds unless a Fail* flag is set.
type StubPaymentProvider struct {
	mu sync.Mutex

	Prices map[types.SubscriptionTier]string

	FailCreateCustomer bool
	FailCheckout       bool
	FailPortal         bool
	FailReportUsage    bool

	CreatedCustomers  []string
	CheckoutSessions  []string
	ReportedUsage     []string
	nextCustomerIndex int
}

func NewStubPaymentProvider() *StubPaymentProvider {
	return &StubPaymentProvider{
		Prices: map[types.SubscriptionTier]string{
			types.SubscriptionTierPro:        "price_pro_stub",
			types.SubscriptionTierEnterprise: "price_enterprise_stub",
		},
	}
}

func (p *StubPaymentProvider) PriceForTier(tier types.SubscriptionTier) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.Prices[tier]
	if !ok {
		return "", ierr.NewError("no price configured for tier").
			WithHintf("Tier %s has no price configured", tier).
			Mark(ierr.ErrValidation)
	}
	return price, nil
}

func (p *StubPaymentProvider) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FailCreateCustomer {
		return "", ierr.NewError("customer creation failed").Mark(ierr.ErrSystem)
	}
	p.nextCustomerIndex++
	id := fmt.Sprintf("cus_stub_%03d", p.nextCustomerIndex)
	p.CreatedCustomers = append(p.CreatedCustomers, id)
	return id, nil
}

func (p *StubPaymentProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string, metadata map[string]string) (*stripe.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FailCheckout {
		return nil, ierr.NewError("checkout session creation failed").Mark(ierr.ErrSystem)
	}
	id := fmt.Sprintf("cs_stub_%03d", len(p.CheckoutSessions)+1)
	p.CheckoutSessions = append(p.CheckoutSessions, id)
	return &stripe.Session{
		ID:  id,
		URL: "https://checkout.stub.test/" + id,
	}, nil
}

func (p *StubPaymentProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripe.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FailPortal {
		return nil, ierr.NewError("portal session creation failed").Mark(ierr.ErrSystem)
	}
	return &stripe.Session{
		ID:  "bps_stub_001",
		URL: "https://portal.stub.test/" + customerID,
	}, nil
}

func (p *StubPaymentProvider) VerifyAndParseWebhook(payload []byte, signature string) (*events.WebhookEvent, error) {
	if signature == "" {
		return nil, ierr.NewError("webhook signature invalid").Mark(ierr.ErrSignatureInvalid)
	}
	return &events.WebhookEvent{
		EventID: types.GenerateUUIDWithPrefix("evt"),
		Type:    types.WebhookEventSubscriptionUpdated,
		Payload: payload,
	}, nil
}

func (p *StubPaymentProvider) ReportUsage(ctx context.Context, customerID string, operationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FailReportUsage {
		return ierr.NewError("meter event rejected").Mark(ierr.ErrSystem)
	}
	p.ReportedUsage = append(p.ReportedUsage, operationID)
	return nil
}
