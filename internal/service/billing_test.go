package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/zeroechelon/outpost/internal/api/dto"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/testutil"
	"github.com/zeroechelon/outpost/internal/types"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewBillingService(ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		TenantRepo: stores.TenantRepo,
		UsageRepo:  stores.UsageRepo,
		EventRepo:  stores.EventRepo,
		Provider:   s.GetProvider(),
		Audit:      s.GetAudit(),
	})
}

func (s *BillingServiceSuite) TestCreateCheckoutSession() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:                "tenant-1",
		Name:              "Acme",
		Email:             "billing@acme.test",
		PaymentCustomerID: "cus_acme",
	})

	resp, err := s.service.CreateCheckoutSession(s.GetContext(), "tenant-1", &dto.CreateCheckoutRequest{Tier: "pro"})
	s.NoError(err)
	s.NotEmpty(resp.SessionID)
	s.NotEmpty(resp.URL)
	s.True(s.GetAudit().HasAction("CREATE_CHECKOUT_SESSION"))
	// The existing customer is reused.
	s.Empty(s.GetProvider().CreatedCustomers)
}

func (s *BillingServiceSuite) TestCheckoutProvisionsCustomerOnFirstUse() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:    "tenant-1",
		Name:  "Acme",
		Email: "billing@acme.test",
	})

	_, err := s.service.CreateCheckoutSession(s.GetContext(), "tenant-1", &dto.CreateCheckoutRequest{Tier: "pro"})
	s.NoError(err)
	s.Len(s.GetProvider().CreatedCustomers, 1)
	s.True(s.GetAudit().HasAction("CREATE_STRIPE_CUSTOMER"))

	// The binding is persisted for later lookups and webhooks.
	t, err := s.GetTenantStore().GetByID(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(s.GetProvider().CreatedCustomers[0], t.PaymentCustomerID)
}

func (s *BillingServiceSuite) TestCheckoutRejectsUnknownTier() {
	s.GetTenantStore().Put(&tenant.Tenant{ID: "tenant-1"})

	_, err := s.service.CreateCheckoutSession(s.GetContext(), "tenant-1", &dto.CreateCheckoutRequest{Tier: "platinum"})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestCheckoutRejectsTierWithoutPrice() {
	s.GetTenantStore().Put(&tenant.Tenant{ID: "tenant-1"})

	// free has no checkout price configured.
	_, err := s.service.CreateCheckoutSession(s.GetContext(), "tenant-1", &dto.CreateCheckoutRequest{Tier: "free"})
	s.Error(err)
}

func (s *BillingServiceSuite) TestCreatePortalSession() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:                "tenant-1",
		PaymentCustomerID: "cus_acme",
	})

	resp, err := s.service.CreatePortalSession(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Contains(resp.URL, "cus_acme")
	s.True(s.GetAudit().HasAction("ACCESS_BILLING_PORTAL"))
}

func (s *BillingServiceSuite) TestGetSubscriptionStatusDefaultsNone() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:     "tenant-1",
		Tier:   types.SubscriptionTierFree,
		Status: types.TenantStatusActive,
	})

	resp, err := s.service.GetSubscriptionStatus(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusNone, resp.SubscriptionStatus)
}

func (s *BillingServiceSuite) TestGetSubscriptionStatusUnknownTenant() {
	_, err := s.service.GetSubscriptionStatus(s.GetContext(), "tenant-missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
