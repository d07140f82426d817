package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zeroechelon/outpost/internal/api/dto"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/service"
	"github.com/zeroechelon/outpost/internal/types"
)

type BillingHandler struct {
	billing  service.BillingService
	metering service.MeteringService
	log      *logger.Logger
}

func NewBillingHandler(billing service.BillingService, metering service.MeteringService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, metering: metering, log: log}
}

// @Summary Create a subscription checkout session
// @Description Create a hosted checkout session for upgrading to a paid tier
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.CreateCheckoutRequest true "Checkout request"
// @Success 200 {object} dto.CheckoutResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /v1/billing/checkout [post]
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billing.CreateCheckoutSession(c.Request.Context(), types.GetTenantID(c.Request.Context()), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a billing portal session
// @Description Create a self-service billing portal session for the tenant
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.PortalResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /v1/billing/portal [get]
func (h *BillingHandler) GetPortal(c *gin.Context) {
	resp, err := h.billing.CreatePortalSession(c.Request.Context(), types.GetTenantID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get subscription status
// @Description Get the tenant's tier, account status and subscription state
// @Tags Billing
// @Produce json
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /v1/billing/status [get]
func (h *BillingHandler) GetStatus(c *gin.Context) {
	resp, err := h.billing.GetSubscriptionStatus(c.Request.Context(), types.GetTenantID(c.Request.Context()))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get current usage
// @Description Get the tenant's usage for the current or a named period
// @Tags Billing
// @Produce json
// @Param period query string false "Billing period (YYYY-MM)"
// @Success 200 {object} dto.UsageSnapshot
// @Failure 400 {object} ierr.ErrorResponse
// @Router /v1/billing/usage [get]
func (h *BillingHandler) GetUsage(c *gin.Context) {
	var period *types.BillingPeriod
	if raw := c.Query("period"); raw != "" {
		p, err := types.ParseBillingPeriod(raw)
		if err != nil {
			c.Error(err)
			return
		}
		period = &p
	}

	resp, err := h.metering.GetUsage(c.Request.Context(), types.GetTenantID(c.Request.Context()), period)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get usage history
// @Description List past billing periods for the tenant, newest first
// @Tags Billing
// @Produce json
// @Param limit query int false "Maximum periods to return"
// @Success 200 {object} dto.UsageHistoryResponse
// @Router /v1/billing/usage/history [get]
func (h *BillingHandler) GetUsageHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			c.Error(ierr.NewError("invalid limit").
				WithHintf("Invalid limit: %s", raw).
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.metering.GetUsageHistory(c.Request.Context(), types.GetTenantID(c.Request.Context()), limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Reset usage
// @Description Zero the tenant's usage counter at a billing-cycle anchor
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.ResetUsageRequest false "Reset request"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ierr.ErrorResponse
// @Router /v1/billing/usage/reset [post]
func (h *BillingHandler) ResetUsage(c *gin.Context) {
	var req dto.ResetUsageRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request payload").
				Mark(ierr.ErrValidation))
			return
		}
	}

	var period *types.BillingPeriod
	if req.Period != "" {
		p, err := types.ParseBillingPeriod(req.Period)
		if err != nil {
			c.Error(err)
			return
		}
		period = &p
	}

	if err := h.metering.ResetUsage(c.Request.Context(), types.GetTenantID(c.Request.Context()), period); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "usage reset"})
}
