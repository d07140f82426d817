package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/zeroechelon/outpost/internal/api/dto"
	"github.com/zeroechelon/outpost/internal/domain/audit"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/domain/usage"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

// MeteringService is the quota ledger: it counts metered operations per
// tenant per billing period and enforces the tier ceiling.
type MeteringService interface {
	// RecordUsage admits one metered operation, or rejects it with
	// ErrQuotaExceeded once the tier ceiling is consumed.
	RecordUsage(ctx context.Context, tenantID string, operationID string) (*dto.UsageResult, error)
	// ReleaseUsage gives one previously admitted unit back, for callers
	// whose operation failed after admission. Best effort.
	ReleaseUsage(ctx context.Context, tenantID string, period *types.BillingPeriod)
	// GetUsage reports a period without creating anything.
	GetUsage(ctx context.Context, tenantID string, period *types.BillingPeriod) (*dto.UsageSnapshot, error)
	// CheckQuota reports whether the tenant can admit another operation.
	CheckQuota(ctx context.Context, tenantID string) (bool, error)
	// GetUsageHistory lists past periods, newest first.
	GetUsageHistory(ctx context.Context, tenantID string, limit int) (*dto.UsageHistoryResponse, error)
	// ResetUsage zeroes a counter, intended for billing-cycle anchors.
	ResetUsage(ctx context.Context, tenantID string, period *types.BillingPeriod) error
}

type meteringService struct {
	ServiceParams
}

func NewMeteringService(params ServiceParams) MeteringService {
	return &meteringService{ServiceParams: params}
}

const defaultHistoryLimit = 12

func (s *meteringService) RecordUsage(ctx context.Context, tenantID string, operationID string) (*dto.UsageResult, error) {
	if tenantID == "" {
		return nil, ierr.NewError("tenant id is required").
			WithHint("Missing tenant identity").
			Mark(ierr.ErrValidation)
	}
	if operationID == "" {
		operationID = types.GenerateUUIDWithPrefix("op")
	}

	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tier, ceiling, err := s.resolveCeiling(t)
	if err != nil {
		return nil, err
	}

	period := types.CurrentBillingPeriod(time.Now())
	periodKey := types.PeriodKey(tenantID, period)

	// One bounded atomic increment per admission. The store's condition
	// is the only serialization point between concurrent callers.
	count, err := s.UsageRepo.IncrementWithCeiling(ctx, periodKey, tenantID, ceiling)
	if err != nil {
		if ierr.IsQuotaExceeded(err) {
			return nil, ierr.WithError(err).
				WithReportableDetails(map[string]any{
					"tenant_id": tenantID,
					"tier":      tier,
					"ceiling":   ceiling,
				}).
				Mark(ierr.ErrQuotaExceeded)
		}
		return nil, err
	}

	percent := usagePercent(count, ceiling)
	result := &dto.UsageResult{
		TenantID:     tenantID,
		OperationID:  operationID,
		Period:       period,
		Count:        count,
		Ceiling:      ceiling,
		Remaining:    max(0, ceiling-count),
		UsagePercent: percent,
		Warning:      warningForPercent(percent),
	}

	// Usage is already durably recorded; a reporting failure must not
	// fail the admission.
	if err := s.Provider.ReportUsage(ctx, t.PaymentCustomerID, operationID); err != nil {
		s.Logger.Warnw("failed to report metered usage to provider",
			"tenant_id", tenantID,
			"operation_id", operationID,
			"error", err)
	}

	return result, nil
}

func (s *meteringService) ReleaseUsage(ctx context.Context, tenantID string, period *types.BillingPeriod) {
	periodKey := types.PeriodKey(tenantID, periodOrCurrent(period))
	if err := s.UsageRepo.DecrementIfPositive(ctx, periodKey); err != nil {
		s.Logger.Warnw("failed to release usage unit",
			"tenant_id", tenantID,
			"period_key", periodKey,
			"error", err)
	}
}

func (s *meteringService) GetUsage(ctx context.Context, tenantID string, period *types.BillingPeriod) (*dto.UsageSnapshot, error) {
	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tier, ceiling, err := s.resolveCeiling(t)
	if err != nil {
		return nil, err
	}

	p := periodOrCurrent(period)
	record, err := s.UsageRepo.Get(ctx, types.PeriodKey(tenantID, p))
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		// No increments this period yet; report zero without creating
		// the record.
		record = &usage.Period{
			PeriodKey: types.PeriodKey(tenantID, p),
			TenantID:  tenantID,
		}
	}

	return dto.NewUsageSnapshot(record, tier, ceiling, usagePercent(record.Count, ceiling)), nil
}

func (s *meteringService) CheckQuota(ctx context.Context, tenantID string) (bool, error) {
	snapshot, err := s.GetUsage(ctx, tenantID, nil)
	if err != nil {
		return false, err
	}
	return snapshot.Remaining > 0, nil
}

func (s *meteringService) GetUsageHistory(ctx context.Context, tenantID string, limit int) (*dto.UsageHistoryResponse, error) {
	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tier, ceiling, err := s.resolveCeiling(t)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	periods, err := s.UsageRepo.History(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}

	return &dto.UsageHistoryResponse{
		TenantID: tenantID,
		Periods: lo.Map(periods, func(p *usage.Period, _ int) *dto.UsageSnapshot {
			return dto.NewUsageSnapshot(p, tier, ceiling, usagePercent(p.Count, ceiling))
		}),
	}, nil
}

func (s *meteringService) ResetUsage(ctx context.Context, tenantID string, period *types.BillingPeriod) error {
	if _, err := s.TenantRepo.GetByID(ctx, tenantID); err != nil {
		return err
	}

	p := periodOrCurrent(period)
	if err := s.UsageRepo.Reset(ctx, types.PeriodKey(tenantID, p), tenantID); err != nil {
		return err
	}

	s.Audit.Log(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionUsageReset,
		Resource: string(p),
	})
	return nil
}

// resolveCeiling maps the tenant's tier onto its configured ceiling.
// Tenants provisioned before billing onboarding carry no tier and count
// as free.
func (s *meteringService) resolveCeiling(t *tenant.Tenant) (types.SubscriptionTier, int64, error) {
	tier := t.Tier
	if tier == "" {
		tier = types.SubscriptionTierFree
	}

	ceiling, err := s.Config.Quota.CeilingForTier(tier)
	if err != nil {
		return tier, 0, err
	}
	return tier, ceiling, nil
}

func usagePercent(count, ceiling int64) float64 {
	if ceiling <= 0 {
		return 100
	}
	percent, _ := decimal.NewFromInt(count).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(ceiling)).
		Round(1).
		Float64()
	return percent
}

func warningForPercent(percent float64) types.UsageWarning {
	switch {
	case percent >= 100:
		return types.UsageWarningReached
	case percent >= 80:
		return types.UsageWarningApproaching
	default:
		return types.UsageWarningNone
	}
}

func periodOrCurrent(period *types.BillingPeriod) types.BillingPeriod {
	if period != nil {
		return *period
	}
	return types.CurrentBillingPeriod(time.Now())
}
