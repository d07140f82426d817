package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/rest/middleware"
	"github.com/zeroechelon/outpost/internal/service"
	"github.com/zeroechelon/outpost/internal/testutil"
	"github.com/zeroechelon/outpost/internal/types"
)

type WebhookHandlerSuite struct {
	testutil.BaseServiceTestSuite
	engine *gin.Engine
}

func TestWebhookHandler(t *testing.T) {
	suite.Run(t, new(WebhookHandlerSuite))
}

func (s *WebhookHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	stores := s.GetStores()
	params := service.ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		TenantRepo: stores.TenantRepo,
		UsageRepo:  stores.UsageRepo,
		EventRepo:  stores.EventRepo,
		Provider:   s.GetProvider(),
		Audit:      s.GetAudit(),
	}
	billing := service.NewBillingService(params)
	webhook := service.NewWebhookService(params, billing)
	handler := NewWebhookHandler(webhook, s.GetProvider(), s.GetLogger())

	s.engine = gin.New()
	s.engine.Use(middleware.ErrorHandler())
	s.engine.POST("/webhooks/stripe", handler.HandleStripeWebhook)
}

func (s *WebhookHandlerSuite) post(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerSuite) TestMissingSignatureRejected() {
	w := s.post([]byte(`{}`), "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *WebhookHandlerSuite) TestVerifiedEventAcknowledged() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:                "tenant-1",
		Status:            types.TenantStatusActive,
		PaymentCustomerID: "cus_acme",
	})
	body, _ := json.Marshal(events.SubscriptionPayload{
		SubscriptionID: "sub_123",
		CustomerID:     "cus_acme",
		Status:         types.SubscriptionStatusActive,
	})

	w := s.post(body, "t=1,v1=stub")
	s.Equal(http.StatusOK, w.Code)

	var result events.ProcessingResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(types.ProcessingStatusProcessed, result.Status)
}

func (s *WebhookHandlerSuite) TestProcessingFailureStillAcknowledged() {
	// Valid signature, payload that no handler can decode. The provider
	// must still see a 2xx; the absent processed marker is what keeps a
	// later redelivery safe to apply.
	w := s.post([]byte(`{not json`), "t=1,v1=stub")
	s.Equal(http.StatusOK, w.Code)

	var result events.ProcessingResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(types.ProcessingStatusError, result.Status)
	s.NotEmpty(result.Error)
	s.Empty(s.GetAudit().Entries())
}
