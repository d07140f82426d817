package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/zeroechelon/outpost/internal/domain/tenant"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/testutil"
	"github.com/zeroechelon/outpost/internal/types"
)

type MeteringServiceSuite struct {
	testutil.BaseServiceTestSuite
	service MeteringService
}

func TestMeteringService(t *testing.T) {
	suite.Run(t, new(MeteringServiceSuite))
}

func (s *MeteringServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewMeteringService(s.params())
}

func (s *MeteringServiceSuite) params() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		TenantRepo: stores.TenantRepo,
		UsageRepo:  stores.UsageRepo,
		EventRepo:  stores.EventRepo,
		Provider:   s.GetProvider(),
		Audit:      s.GetAudit(),
	}
}

func (s *MeteringServiceSuite) seedTenant(id string, tier types.SubscriptionTier) {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:                id,
		Name:              "Acme",
		Email:             "billing@acme.test",
		Tier:              tier,
		Status:            types.TenantStatusActive,
		PaymentCustomerID: "cus_acme",
	})
}

func (s *MeteringServiceSuite) TestRecordUsageIncrementsCounter() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "op-1")
	s.NoError(err)
	s.Equal(int64(1), result.Count)
	s.Equal(int64(10), result.Ceiling)
	s.Equal(int64(9), result.Remaining)
	s.Equal(types.UsageWarningNone, result.Warning)
	s.Equal(types.CurrentBillingPeriod(time.Now()), result.Period)
}

func (s *MeteringServiceSuite) TestRecordUsageRejectsAtCeiling() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	for i := 0; i < 10; i++ {
		_, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
		s.NoError(err)
	}

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
	s.Nil(result)
	s.Error(err)
	s.True(ierr.IsQuotaExceeded(err))

	// The rejected call must not consume quota.
	snapshot, err := s.service.GetUsage(s.GetContext(), "tenant-1", nil)
	s.NoError(err)
	s.Equal(int64(10), snapshot.Count)
}

func (s *MeteringServiceSuite) TestRecordUsageWarningThresholds() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	for i := 1; i <= 10; i++ {
		res, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
		s.NoError(err)
		switch {
		case i < 8:
			s.Equal(types.UsageWarningNone, res.Warning, "count %d", i)
		case i < 10:
			s.Equal(types.UsageWarningApproaching, res.Warning, "count %d", i)
		default:
			s.Equal(types.UsageWarningReached, res.Warning, "count %d", i)
		}
		// The 8th call lands exactly on the warning threshold and the
		// 10th exactly on the ceiling.
		if i == 8 {
			s.Equal(80.0, res.UsagePercent)
		}
		if i == 10 {
			s.Equal(100.0, res.UsagePercent)
			s.Equal(int64(0), res.Remaining)
		}
	}
}

func (s *MeteringServiceSuite) TestRecordUsageRejectsUnconfiguredTier() {
	s.seedTenant("tenant-1", types.SubscriptionTier("platinum"))

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
	s.Nil(result)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *MeteringServiceSuite) TestRecordUsageProTierCeiling() {
	s.seedTenant("tenant-1", types.SubscriptionTierPro)

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
	s.NoError(err)
	s.Equal(int64(100), result.Ceiling)
}

func (s *MeteringServiceSuite) TestRecordUsageDefaultsMissingTierToFree() {
	s.GetTenantStore().Put(&tenant.Tenant{
		ID:     "tenant-1",
		Status: types.TenantStatusActive,
	})

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
	s.NoError(err)
	s.Equal(int64(10), result.Ceiling)
}

func (s *MeteringServiceSuite) TestRecordUsageUnknownTenant() {
	_, err := s.service.RecordUsage(s.GetContext(), "tenant-missing", "")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *MeteringServiceSuite) TestRecordUsageReportsMeterEvent() {
	s.seedTenant("tenant-1", types.SubscriptionTierPro)

	_, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "op-42")
	s.NoError(err)
	s.Contains(s.GetProvider().ReportedUsage, "op-42")
}

func (s *MeteringServiceSuite) TestRecordUsageSurvivesMeterFailure() {
	s.seedTenant("tenant-1", types.SubscriptionTierPro)
	s.GetProvider().FailReportUsage = true

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "op-1")
	s.NoError(err)
	s.Equal(int64(1), result.Count)
}

func (s *MeteringServiceSuite) TestGetUsageZeroWithoutRecord() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	snapshot, err := s.service.GetUsage(s.GetContext(), "tenant-1", nil)
	s.NoError(err)
	s.Equal(int64(0), snapshot.Count)
	s.Equal(int64(10), snapshot.Remaining)

	// The read must not have created a record.
	period := types.CurrentBillingPeriod(time.Now())
	_, err = s.GetUsageStore().Get(s.GetContext(), types.PeriodKey("tenant-1", period))
	s.True(ierr.IsNotFound(err))
}

func (s *MeteringServiceSuite) TestCheckQuota() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	ok, err := s.service.CheckQuota(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.True(ok)

	for i := 0; i < 10; i++ {
		_, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
		s.NoError(err)
	}

	ok, err = s.service.CheckQuota(s.GetContext(), "tenant-1")
	s.NoError(err)
	s.False(ok)
}

func (s *MeteringServiceSuite) TestResetUsageReopensQuota() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	for i := 0; i < 10; i++ {
		_, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
		s.NoError(err)
	}

	err := s.service.ResetUsage(s.GetContext(), "tenant-1", nil)
	s.NoError(err)
	s.True(s.GetAudit().HasAction("USAGE_RESET"))

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
	s.NoError(err)
	s.Equal(int64(1), result.Count)
}

func (s *MeteringServiceSuite) TestReleaseUsageGivesUnitBack() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	for i := 0; i < 10; i++ {
		_, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
		s.NoError(err)
	}

	s.service.ReleaseUsage(s.GetContext(), "tenant-1", nil)

	result, err := s.service.RecordUsage(s.GetContext(), "tenant-1", "")
	s.NoError(err)
	s.Equal(int64(10), result.Count)
}

func (s *MeteringServiceSuite) TestReleaseUsageNeverGoesNegative() {
	s.seedTenant("tenant-1", types.SubscriptionTierFree)

	s.service.ReleaseUsage(s.GetContext(), "tenant-1", nil)

	snapshot, err := s.service.GetUsage(s.GetContext(), "tenant-1", nil)
	s.NoError(err)
	s.Equal(int64(0), snapshot.Count)
}

func (s *MeteringServiceSuite) TestGetUsageHistoryNewestFirst() {
	s.seedTenant("tenant-1", types.SubscriptionTierPro)

	for _, period := range []string{"2026-06", "2026-07", "2026-08"} {
		key := types.PeriodKey("tenant-1", types.BillingPeriod(period))
		_, err := s.GetUsageStore().IncrementWithCeiling(s.GetContext(), key, "tenant-1", 100)
		s.NoError(err)
	}

	resp, err := s.service.GetUsageHistory(s.GetContext(), "tenant-1", 2)
	s.NoError(err)
	s.Len(resp.Periods, 2)
	s.Equal(types.BillingPeriod("2026-08"), resp.Periods[0].Period)
	s.Equal(types.BillingPeriod("2026-07"), resp.Periods[1].Period)
}
