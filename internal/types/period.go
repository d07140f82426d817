package types

import (
	"fmt"
	"strings"
	"time"

	ierr "github.com/zeroechelon/outpost/internal/errors"
)

// BillingPeriod is a calendar-month label in YYYY-MM form. Usage is
// counted per tenant per period and the tier ceiling applies per period.
type BillingPeriod string

const billingPeriodLayout = "2006-01"

// CurrentBillingPeriod returns the period for the given wall-clock time
// in UTC.
func CurrentBillingPeriod(now time.Time) BillingPeriod {
	return BillingPeriod(now.UTC().Format(billingPeriodLayout))
}

// ParseBillingPeriod validates a caller-supplied period label.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	if _, err := time.Parse(billingPeriodLayout, s); err != nil {
		return "", ierr.NewError("invalid billing period").
			WithHintf("Invalid period: %s. Expected format: YYYY-MM", s).
			Mark(ierr.ErrValidation)
	}
	return BillingPeriod(s), nil
}

func (p BillingPeriod) String() string {
	return string(p)
}

// PeriodKey is the composite usage-record key, tenant scoped by calendar
// month: {tenant_id}#{YYYY-MM}.
func PeriodKey(tenantID string, period BillingPeriod) string {
	return fmt.Sprintf("%s#%s", tenantID, period)
}

// PeriodKeyPrefix is the key prefix covering every period of a tenant,
// used for history queries.
func PeriodKeyPrefix(tenantID string) string {
	return tenantID + "#"
}

// PeriodFromKey extracts the period label from a composite key.
func PeriodFromKey(key string) BillingPeriod {
	if idx := strings.LastIndex(key, "#"); idx >= 0 {
		return BillingPeriod(key[idx+1:])
	}
	return BillingPeriod(key)
}
