// Package mocks provides testify/mock fakes for the core ports.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lorrc/support-analytics-backend/internal/core/domain"
	"github.com/lorrc/support-analytics-backend/internal/core/ports"
)

// MockWarehouseRepository is a mock implementation of ports.WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

var _ ports.WarehouseRepository = (*MockWarehouseRepository)(nil)

func NewMockWarehouseRepository() *MockWarehouseRepository {
	return &MockWarehouseRepository{}
}

func (m *MockWarehouseRepository) DailyMetrics(ctx context.Context) ([]domain.DailyMetric, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyMetric), args.Error(1)
}

func (m *MockWarehouseRepository) AgentPerformance(ctx context.Context) ([]domain.AgentPerformance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgentPerformance), args.Error(1)
}

func (m *MockWarehouseRepository) SummaryStats(ctx context.Context) (*domain.SummaryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SummaryStats), args.Error(1)
}

func (m *MockWarehouseRepository) TagAnalysis(ctx context.Context) ([]domain.TagAnalysis, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TagAnalysis), args.Error(1)
}

func (m *MockWarehouseRepository) HourlyHeatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HeatmapCell), args.Error(1)
}

func (m *MockWarehouseRepository) Freshness(ctx context.Context) (*domain.WarehouseFreshness, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WarehouseFreshness), args.Error(1)
}

// MockDashboardService is a mock implementation of ports.DashboardService
type MockDashboardService struct {
	mock.Mock
}

var _ ports.DashboardService = (*MockDashboardService)(nil)

func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{}
}

func (m *MockDashboardService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockDashboardService) GetKPIs(ctx context.Context) ([]domain.KPICard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KPICard), args.Error(1)
}

func (m *MockDashboardService) GetVolumeTrend(ctx context.Context) ([]domain.TrendPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

func (m *MockDashboardService) GetCSATTrend(ctx context.Context) (*domain.CSATTrend, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CSATTrend), args.Error(1)
}

func (m *MockDashboardService) GetHeatmap(ctx context.Context) (*domain.HeatmapMatrix, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HeatmapMatrix), args.Error(1)
}

func (m *MockDashboardService) GetTopCategories(ctx context.Context) ([]domain.CategoryBar, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryBar), args.Error(1)
}

func (m *MockDashboardService) GetLeaderboards(ctx context.Context) ([]domain.LeaderboardEntry, []domain.LeaderboardEntry, error) {
	args := m.Called(ctx)
	var volume, csat []domain.LeaderboardEntry
	if args.Get(0) != nil {
		volume = args.Get(0).([]domain.LeaderboardEntry)
	}
	if args.Get(1) != nil {
		csat = args.Get(1).([]domain.LeaderboardEntry)
	}
	return volume, csat, args.Error(2)
}

// PassthroughCache is a ResultCache that always invokes the producer. Used
// by service tests that are not exercising cache behavior.
type PassthroughCache struct{}

func (PassthroughCache) GetOrCompute(ctx context.Context, key string, producer func(context.Context) (any, error)) (any, error) {
	return producer(ctx)
}

// FixedClock is a settable ports.Clock for tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ ports.Clock = (*FixedClock)(nil)

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
