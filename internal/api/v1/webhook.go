package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/service"
)

const maxWebhookBodyBytes = 1 << 16

type WebhookHandler struct {
	webhook  service.WebhookService
	provider service.PaymentProvider
	log      *logger.Logger
}

func NewWebhookHandler(webhook service.WebhookService, provider service.PaymentProvider, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{webhook: webhook, provider: provider, log: log}
}

// HandleStripeWebhook verifies and reconciles one provider delivery.
// Once the signature check passes the response is always 2xx, even when
// processing fails: a non-2xx would put the provider into a redelivery
// storm over an application fault, and the missing processed marker is
// what keeps an eventual redelivery safe. Only an unreadable body or a
// failed signature check yields a non-2xx.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook body").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := h.provider.VerifyAndParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warnw("webhook signature verification failed", "error", err)
		c.Error(err)
		return
	}

	result, err := h.webhook.ProcessEvent(c.Request.Context(), event)
	if err != nil {
		h.log.Errorw("webhook processing failed",
			"event_id", event.EventID,
			"event_type", event.Type,
			"error", err)
		if result.Error == "" {
			result.Error = err.Error()
		}
	}

	c.JSON(http.StatusOK, result)
}
