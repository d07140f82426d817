package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/domain/usage"
	"github.com/zeroechelon/outpost/internal/logger"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TenantRepo tenant.Repository
	UsageRepo  usage.Repository
	EventRepo  events.Repository
}

// BaseServiceTestSuite provides common functionality for all service tests
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	cfg      *config.Configuration
	logger   *logger.Logger
	stores   Stores
	tenants  *InMemoryTenantStore
	usage    *InMemoryUsageStore
	events   *InMemoryProcessedEventStore
	provider *StubPaymentProvider
	audit    *RecordingAuditLogger
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.cfg = config.GetDefaultConfig()
	s.logger = logger.NewNop()

	s.tenants = NewInMemoryTenantStore()
	s.usage = NewInMemoryUsageStore()
	s.events = NewInMemoryProcessedEventStore()
	s.provider = NewStubPaymentProvider()
	s.audit = NewRecordingAuditLogger()

	s.stores = Stores{
		TenantRepo: s.tenants,
		UsageRepo:  s.usage,
		EventRepo:  s.events,
	}
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.tenants.Clear()
	s.usage.Clear()
	s.events.Clear()
	s.audit.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetTenantStore() *InMemoryTenantStore {
	return s.tenants
}

func (s *BaseServiceTestSuite) GetUsageStore() *InMemoryUsageStore {
	return s.usage
}

func (s *BaseServiceTestSuite) GetEventStore() *InMemoryProcessedEventStore {
	return s.events
}

func (s *BaseServiceTestSuite) GetProvider() *StubPaymentProvider {
	return s.provider
}

func (s *BaseServiceTestSuite) GetAudit() *RecordingAuditLogger {
	return s.audit
}
