package dto

import (
	"time"

	"github.com/zeroechelon/outpost/internal/domain/usage"
	"github.com/zeroechelon/outpost/internal/types"
)

// UsageResult is returned by a successful metered-operation admission.
type UsageResult struct {
	TenantID     string              `json:"tenant_id"`
	OperationID  string              `json:"operation_id"`
	Period       types.BillingPeriod `json:"period"`
	Count        int64               `json:"count"`
	Ceiling      int64               `json:"quota"`
	Remaining    int64               `json:"remaining"`
	UsagePercent float64             `json:"usage_percent"`
	Warning      types.UsageWarning  `json:"warning,omitempty"`
}

// UsageSnapshot is a read-only view of one billing period.
type UsageSnapshot struct {
	TenantID     string                 `json:"tenant_id"`
	Period       types.BillingPeriod    `json:"period"`
	Tier         types.SubscriptionTier `json:"tier"`
	Count        int64                  `json:"count"`
	Ceiling      int64                  `json:"quota"`
	Remaining    int64                  `json:"remaining"`
	UsagePercent float64                `json:"usage_percent"`
	ResetAt      string                 `json:"reset_at,omitempty"`
}

// UsageHistoryResponse lists periods newest first.
type UsageHistoryResponse struct {
	TenantID string           `json:"tenant_id"`
	Periods  []*UsageSnapshot `json:"periods"`
}

// ResetUsageRequest zeroes a counter at a billing-cycle anchor.
type ResetUsageRequest struct {
	Period string `json:"period,omitempty"`
}

// NewUsageSnapshot builds a snapshot from a stored period and the
// tenant's current ceiling.
func NewUsageSnapshot(p *usage.Period, tier types.SubscriptionTier, ceiling int64, percent float64) *UsageSnapshot {
	snapshot := &UsageSnapshot{
		TenantID:     p.TenantID,
		Period:       p.Period(),
		Tier:         tier,
		Count:        p.Count,
		Ceiling:      ceiling,
		Remaining:    max(0, ceiling-p.Count),
		UsagePercent: percent,
	}
	if p.ResetAt != nil {
		snapshot.ResetAt = p.ResetAt.UTC().Format(time.RFC3339)
	}
	return snapshot
}
