package types

import (
	"strings"

	ierr "github.com/zeroechelon/outpost/internal/errors"
)

// SubscriptionTier is the named service level a tenant is subscribed to.
// The usage ceiling for each tier comes from configuration, not from this
// package, so new tiers can be introduced without code changes.
type SubscriptionTier string

const (
	SubscriptionTierFree       SubscriptionTier = "free"
	SubscriptionTierPro        SubscriptionTier = "pro"
	SubscriptionTierEnterprise SubscriptionTier = "enterprise"
)

// ParseSubscriptionTier normalizes and validates a tier string.
func ParseSubscriptionTier(s string) (SubscriptionTier, error) {
	tier := SubscriptionTier(strings.ToLower(strings.TrimSpace(s)))
	if err := tier.Validate(); err != nil {
		return "", err
	}
	return tier, nil
}

func (t SubscriptionTier) Validate() error {
	switch t {
	case SubscriptionTierFree, SubscriptionTierPro, SubscriptionTierEnterprise:
		return nil
	default:
		return ierr.NewError("invalid subscription tier").
			WithHintf("Invalid tier: %s. Valid tiers: free, pro, enterprise", t).
			WithReportableDetails(map[string]any{
				"tier": t,
				"allowed": []SubscriptionTier{
					SubscriptionTierFree,
					SubscriptionTierPro,
					SubscriptionTierEnterprise,
				},
			}).
			Mark(ierr.ErrValidation)
	}
}

func (t SubscriptionTier) String() string {
	return string(t)
}
