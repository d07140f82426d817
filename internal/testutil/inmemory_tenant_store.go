package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/zeroechelon/outpost/internal/domain/tenant"
	ierr "github.com/zeroechelon/outpost/internal/errors"
)

// InMemoryTenantStore is an in-memory implementation of tenant.Repository
type InMemoryTenantStore struct {
	mu      sync.RWMutex
	tenants map[string]*tenant.Tenant
}

func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		tenants: make(map[string]*tenant.Tenant),
	}
}

// Put seeds a tenant for a test.
func (s *InMemoryTenantStore) Put(t *tenant.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tenants[t.ID] = &cp
}

func (s *InMemoryTenantStore) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ierr.NewError("tenant not found").
			WithHintf("Tenant with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryTenantStore) GetByPaymentCustomerID(ctx context.Context, customerID string) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.PaymentCustomerID == customerID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ierr.NewError("tenant not found").
		WithHintf("No tenant for payment customer %s", customerID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryTenantStore) SetPaymentCustomerID(ctx context.Context, id string, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ierr.NewError("tenant not found").
			WithHintf("Tenant with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	t.PaymentCustomerID = customerID
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryTenantStore) ApplySubscriptionUpdate(ctx context.Context, id string, update tenant.SubscriptionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ierr.NewError("tenant not found").
			WithHintf("Tenant with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	t.SubscriptionStatus = update.SubscriptionStatus
	if update.SubscriptionID != "" {
		t.SubscriptionID = update.SubscriptionID
	}
	if update.PeriodEnd != nil {
		t.PeriodEnd = update.PeriodEnd
	}
	if update.Status != "" {
		t.Status = update.Status
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryTenantStore) MarkPaymentReceived(ctx context.Context, id string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ierr.NewError("tenant not found").
			WithHintf("Tenant with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	t.Status = "active"
	t.LastPaymentAt = &paidAt
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryTenantStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants = make(map[string]*tenant.Tenant)
}
