package usage

import (
	"time"

	"github.com/zeroechelon/outpost/internal/types"
)

// Period is one tenant's metered-operation counter for one calendar
// month. Created lazily on first increment; reset by administrative
// action; never deleted.
type Period struct {
	// PeriodKey is the composite identity {tenant_id}#{YYYY-MM}.
	PeriodKey string     `json:"period_key" dynamodbav:"period_key"`
	TenantID  string     `json:"tenant_id" dynamodbav:"tenant_id"`
	Count     int64      `json:"count" dynamodbav:"job_count"`
	UpdatedAt time.Time  `json:"updated_at" dynamodbav:"updated_at"`
	ResetAt   *time.Time `json:"reset_at,omitempty" dynamodbav:"reset_at,omitempty"`
}

// Period label of this counter.
func (p *Period) Period() types.BillingPeriod {
	return types.PeriodFromKey(p.PeriodKey)
}
