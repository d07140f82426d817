package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/zeroechelon/outpost/internal/domain/usage"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/types"
)

// InMemoryUsageStore is an in-memory implementation of usage.Repository.
// It mirrors the conditional-write semantics of the durable store: the
// increment is checked against the ceiling and applied under one lock.
type InMemoryUsageStore struct {
	mu      sync.Mutex
	periods map[string]*usage.Period
}

func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		periods: make(map[string]*usage.Period),
	}
}

func (s *InMemoryUsageStore) IncrementWithCeiling(ctx context.Context, periodKey string, tenantID string, ceiling int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodKey]
	if !ok {
		p = &usage.Period{
			PeriodKey: periodKey,
			TenantID:  tenantID,
		}
		s.periods[periodKey] = p
	}

	if p.Count >= ceiling {
		return 0, ierr.NewError("quota exceeded").
			WithHintf("Usage quota of %d reached for this billing period", ceiling).
			WithReportableDetails(map[string]any{
				"count":   p.Count,
				"ceiling": ceiling,
			}).
			Mark(ierr.ErrQuotaExceeded)
	}

	p.Count++
	p.UpdatedAt = time.Now().UTC()
	return p.Count, nil
}

func (s *InMemoryUsageStore) DecrementIfPositive(ctx context.Context, periodKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodKey]
	if !ok || p.Count <= 0 {
		return nil
	}
	p.Count--
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryUsageStore) Get(ctx context.Context, periodKey string) (*usage.Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodKey]
	if !ok {
		return nil, ierr.NewError("usage record not found").
			WithHintf("No usage recorded for %s", periodKey).
			Mark(ierr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryUsageStore) Reset(ctx context.Context, periodKey string, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p, ok := s.periods[periodKey]
	if !ok {
		p = &usage.Period{
			PeriodKey: periodKey,
			TenantID:  tenantID,
		}
		s.periods[periodKey] = p
	}
	p.Count = 0
	p.UpdatedAt = now
	p.ResetAt = &now
	return nil
}

func (s *InMemoryUsageStore) History(ctx context.Context, tenantID string, limit int) ([]*usage.Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := types.PeriodKeyPrefix(tenantID)
	var result []*usage.Period
	for key, p := range s.periods {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			cp := *p
			result = append(result, &cp)
		}
	}

	// Newest first, matching the range-key order of the durable store.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].PeriodKey > result[i].PeriodKey {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *InMemoryUsageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = make(map[string]*usage.Period)
}
