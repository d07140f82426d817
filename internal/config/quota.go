package config

import (
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

// EnterpriseCeiling is effectively unbounded but keeps the counter
// arithmetic finite.
const EnterpriseCeiling int64 = 999999

// QuotaConfig is the quota ceiling policy table per subscription tier.
// Ceilings are configuration so new tiers ship without code changes.
type QuotaConfig struct {
	Ceilings map[string]int64 `mapstructure:"ceilings" validate:"required"`
}

// DefaultCeilings returns the stock policy table.
func DefaultCeilings() map[string]int64 {
	return map[string]int64{
		string(types.SubscriptionTierFree):       10,
		string(types.SubscriptionTierPro):        100,
		string(types.SubscriptionTierEnterprise): EnterpriseCeiling,
	}
}

// CeilingForTier resolves the usage ceiling for a tier.
func (q QuotaConfig) CeilingForTier(tier types.SubscriptionTier) (int64, error) {
	ceiling, ok := q.Ceilings[string(tier)]
	if !ok {
		return 0, ierr.NewError("no quota ceiling configured for tier").
			WithHintf("Unknown tier: %s", tier).
			WithReportableDetails(map[string]any{"tier": tier}).
			Mark(ierr.ErrValidation)
	}
	return ceiling, nil
}

func (q QuotaConfig) Validate() error {
	if len(q.Ceilings) == 0 {
		return ierr.NewError("quota ceilings must not be empty").
			Mark(ierr.ErrValidation)
	}
	for tier, ceiling := range q.Ceilings {
		if ceiling <= 0 {
			return ierr.NewError("quota ceiling must be positive").
				WithReportableDetails(map[string]any{
					"tier":    tier,
					"ceiling": ceiling,
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
