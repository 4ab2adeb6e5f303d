package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/support-analytics-backend/internal/config"
	"github.com/lorrc/support-analytics-backend/internal/core/domain"
	apperrors "github.com/lorrc/support-analytics-backend/internal/core/errors"
	"github.com/lorrc/support-analytics-backend/internal/core/mocks"
	"github.com/lorrc/support-analytics-backend/internal/core/services"
)

func testDashboardConfig() config.DashboardConfig {
	return config.DashboardConfig{
		CacheTTL:          5 * time.Minute,
		TrendDays:         90,
		HeatmapDays:       30,
		TopTags:           15,
		ChartTags:         8,
		LeaderboardSize:   10,
		CSATBoardSize:     5,
		CSATBoardMinLoad:  10,
		CSATTargetPct:     70,
		CSATGoodThreshold: 65,
		BacklogThreshold:  150,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func healthyStats() *domain.SummaryStats {
	return &domain.SummaryStats{
		TotalTickets:       5000,
		Backlog:            120,
		AvgResolutionHours: 8.4,
		SameDayPct:         61.0,
		RatedGood:          130,
		RatedBad:           70,
		TodayTickets:       120,
		YesterdayTickets:   100,
		FastResponsePct:    55.0,
	}
}

func newService(repo *mocks.MockWarehouseRepository, clk *mocks.FixedClock) *services.DashboardService {
	return services.NewDashboardService(repo, mocks.PassthroughCache{}, clk, testDashboardConfig(), testLogger())
}

func TestDashboardService_GetDashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("full render", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		repo.On("SummaryStats", ctx).Return(healthyStats(), nil)
		repo.On("DailyMetrics", ctx).Return([]domain.DailyMetric{
			{Date: now.AddDate(0, 0, -1), TicketCount: 40, CSATRate: 0.7},
			{Date: now.AddDate(0, 0, -2), TicketCount: 60, CSATRate: 0.6},
		}, nil)
		repo.On("AgentPerformance", ctx).Return([]domain.AgentPerformance{
			{AgentName: "avery", CreatedMonth: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), TicketsHandled: 40, CSATRate: 0.9},
			{AgentName: "blake", CreatedMonth: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), TicketsHandled: 90, CSATRate: 0.8},
		}, nil)
		repo.On("TagAnalysis", ctx).Return([]domain.TagAnalysis{
			{Tag: "billing", TotalTickets: 100, AvgCSAT: 0.8},
		}, nil)
		repo.On("HourlyHeatmap", ctx).Return([]domain.HeatmapCell{
			{DayOfWeek: "Monday", Hour: 9, TicketCount: 5},
		}, nil)
		repo.On("Freshness", ctx).Return(&domain.WarehouseFreshness{
			LatestDate: now.Truncate(24 * time.Hour),
		}, nil)

		dashboard, err := svc.GetDashboard(ctx)

		require.NoError(t, err)
		assert.Equal(t, now, dashboard.GeneratedAt)
		assert.Equal(t, domain.FreshnessLive, dashboard.Freshness)
		require.Len(t, dashboard.KPIs, 5)
		assert.Len(t, dashboard.VolumeTrend, 2)
		assert.Len(t, dashboard.CSATTrend.Points, 2)
		assert.Len(t, dashboard.TopCategories, 1)

		// Only June's agent makes the current-month boards.
		require.Len(t, dashboard.VolumeLeaderboard, 1)
		assert.Equal(t, "avery", dashboard.VolumeLeaderboard[0].AgentName)
		require.Len(t, dashboard.CSATLeaderboard, 1)

		repo.AssertExpectations(t)
	})

	t.Run("kpi cards frame deltas by backlog impact", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		repo.On("SummaryStats", ctx).Return(healthyStats(), nil)

		kpis, err := svc.GetKPIs(ctx)
		require.NoError(t, err)
		require.Len(t, kpis, 5)

		// good=130 bad=70 -> 65.0, not above the 65 threshold
		assert.Equal(t, "CSAT Score", kpis[0].Label)
		assert.Equal(t, "65%", kpis[0].Value)
		assert.Equal(t, domain.DeltaNegative, kpis[0].DeltaDirection)

		// backlog 120 < 150 frames positive
		assert.Equal(t, domain.DeltaPositive, kpis[1].DeltaDirection)

		assert.Equal(t, "8.4h", kpis[2].Value)
		assert.Equal(t, "61%", kpis[3].Value)

		// today 120 vs yesterday 100: delta 20, more tickets is worse
		assert.Equal(t, "120", kpis[4].Value)
		assert.Equal(t, "20 vs yesterday", kpis[4].Delta)
		assert.Equal(t, domain.DeltaNegative, kpis[4].DeltaDirection)
	})

	t.Run("equal day volumes render no delta", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		stats := healthyStats()
		stats.YesterdayTickets = stats.TodayTickets
		repo.On("SummaryStats", ctx).Return(stats, nil)

		kpis, err := svc.GetKPIs(ctx)
		require.NoError(t, err)
		require.Len(t, kpis, 5)

		assert.Equal(t, "120", kpis[4].Value)
		assert.Empty(t, kpis[4].Delta)
		assert.Empty(t, kpis[4].DeltaDirection)
	})

	t.Run("warehouse failure aborts the whole pass", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		repo.On("SummaryStats", ctx).Return(nil, apperrors.ErrQueryFailed)

		dashboard, err := svc.GetDashboard(ctx)

		assert.Nil(t, dashboard)
		assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
		repo.AssertNotCalled(t, "DailyMetrics")
	})

	t.Run("empty agent month skips leaderboards without error", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		repo.On("AgentPerformance", ctx).Return([]domain.AgentPerformance{}, nil)

		volume, csat, err := svc.GetLeaderboards(ctx)

		require.NoError(t, err)
		assert.Empty(t, volume)
		assert.Empty(t, csat)
	})

	t.Run("empty tag table yields zero bars", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		repo.On("TagAnalysis", ctx).Return([]domain.TagAnalysis{}, nil)

		bars, err := svc.GetTopCategories(ctx)

		require.NoError(t, err)
		assert.Empty(t, bars)
	})

	t.Run("stale mart flagged", func(t *testing.T) {
		repo := mocks.NewMockWarehouseRepository()
		clk := mocks.NewFixedClock(now)
		svc := newService(repo, clk)

		repo.On("SummaryStats", ctx).Return(healthyStats(), nil)
		repo.On("DailyMetrics", ctx).Return([]domain.DailyMetric{}, nil)
		repo.On("AgentPerformance", ctx).Return([]domain.AgentPerformance{}, nil)
		repo.On("TagAnalysis", ctx).Return([]domain.TagAnalysis{}, nil)
		repo.On("HourlyHeatmap", ctx).Return([]domain.HeatmapCell{}, nil)
		repo.On("Freshness", ctx).Return(&domain.WarehouseFreshness{
			LatestDate: now.AddDate(0, 0, -5),
		}, nil)

		dashboard, err := svc.GetDashboard(ctx)

		require.NoError(t, err)
		assert.Equal(t, domain.FreshnessStale, dashboard.Freshness)
	})
}

func TestDashboardService_CachesPerQuery(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	repo := mocks.NewMockWarehouseRepository()
	clk := mocks.NewFixedClock(now)

	// A memoizing cache, not the passthrough: two renders within the TTL
	// must hit the repository once per query.
	countingCache := countingResultCache{calls: map[string]int{}, store: map[string]any{}}
	svc := services.NewDashboardService(repo, countingCache, clk, testDashboardConfig(), testLogger())

	repo.On("DailyMetrics", ctx).Return([]domain.DailyMetric{}, nil).Once()

	_, err := svc.GetVolumeTrend(ctx)
	require.NoError(t, err)
	_, err = svc.GetVolumeTrend(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"daily_metrics": 2}, countingCache.calls)
	repo.AssertExpectations(t)
}

// countingResultCache records per-key accesses and memoizes forever.
type countingResultCache struct {
	calls map[string]int
	store map[string]any
}

func (c countingResultCache) GetOrCompute(ctx context.Context, key string, producer func(context.Context) (any, error)) (any, error) {
	c.calls[key]++
	if v, ok := c.store[key]; ok {
		return v, nil
	}
	v, err := producer(ctx)
	if err != nil {
		return nil, err
	}
	c.store[key] = v
	return v, nil
}

var errBoom = errors.New("boom")

func TestDashboardService_ProducerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockWarehouseRepository()
	clk := mocks.NewFixedClock(time.Now())
	svc := newService(repo, clk)

	repo.On("HourlyHeatmap", ctx).Return(nil, errBoom)

	matrix, err := svc.GetHeatmap(ctx)
	assert.Nil(t, matrix)
	assert.ErrorIs(t, err, errBoom)
}
