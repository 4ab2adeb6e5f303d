package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/support-analytics-backend/internal/config"
	"github.com/lorrc/support-analytics-backend/internal/core/domain"
	"github.com/lorrc/support-analytics-backend/internal/core/ports"
)

// Cache keys, one per warehouse query. The queries take no parameters, so a
// single entry per key suffices.
const (
	cacheKeyDailyMetrics     = "daily_metrics"
	cacheKeyAgentPerformance = "agent_performance"
	cacheKeySummaryStats     = "summary_stats"
	cacheKeyTagAnalysis      = "tag_analysis"
	cacheKeyHourlyHeatmap    = "hourly_heatmap"
	cacheKeyFreshness        = "freshness"
)

// DashboardService assembles the dashboard view model from cached warehouse
// reads. Every render is a fresh stateless pass; the cache and the pool are
// the only shared resources and both are injected.
type DashboardService struct {
	repo   ports.WarehouseRepository
	cache  ports.ResultCache
	clock  ports.Clock
	cfg    config.DashboardConfig
	logger *slog.Logger
}

var _ ports.DashboardService = (*DashboardService)(nil)

func NewDashboardService(
	repo ports.WarehouseRepository,
	cache ports.ResultCache,
	clk ports.Clock,
	cfg config.DashboardConfig,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		repo:   repo,
		cache:  cache,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// memo routes a typed producer through the untyped result cache.
func memo[T any](ctx context.Context, c ports.ResultCache, key string, producer func(context.Context) (T, error)) (T, error) {
	value, err := c.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache entry %q holds %T, not %T", key, value, zero)
	}
	return typed, nil
}

func (s *DashboardService) dailyMetrics(ctx context.Context) ([]domain.DailyMetric, error) {
	return memo(ctx, s.cache, cacheKeyDailyMetrics, s.repo.DailyMetrics)
}

func (s *DashboardService) agentPerformance(ctx context.Context) ([]domain.AgentPerformance, error) {
	return memo(ctx, s.cache, cacheKeyAgentPerformance, s.repo.AgentPerformance)
}

func (s *DashboardService) summaryStats(ctx context.Context) (*domain.SummaryStats, error) {
	return memo(ctx, s.cache, cacheKeySummaryStats, s.repo.SummaryStats)
}

func (s *DashboardService) tagAnalysis(ctx context.Context) ([]domain.TagAnalysis, error) {
	return memo(ctx, s.cache, cacheKeyTagAnalysis, s.repo.TagAnalysis)
}

func (s *DashboardService) hourlyHeatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	return memo(ctx, s.cache, cacheKeyHourlyHeatmap, s.repo.HourlyHeatmap)
}

func (s *DashboardService) freshness(ctx context.Context) (*domain.WarehouseFreshness, error) {
	return memo(ctx, s.cache, cacheKeyFreshness, s.repo.Freshness)
}

// GetDashboard assembles the full view model. Any warehouse failure aborts
// the whole pass; empty agent or tag data degrades per section instead.
func (s *DashboardService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	stats, err := s.summaryStats(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.dailyMetrics(ctx)
	if err != nil {
		return nil, err
	}
	agents, err := s.agentPerformance(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagAnalysis(ctx)
	if err != nil {
		return nil, err
	}
	heat, err := s.hourlyHeatmap(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err := s.freshness(ctx)
	if err != nil {
		return nil, err
	}

	current := CurrentMonthAgents(agents)
	if len(current) == 0 {
		s.logger.InfoContext(ctx, "no agent rows for current month, skipping leaderboards")
	}

	heatmap := PivotHeatmap(heat)
	return &domain.Dashboard{
		GeneratedAt:       s.clock.Now(),
		Freshness:         s.freshnessStatus(fresh),
		KPIs:              s.buildKPIs(stats),
		VolumeTrend:       BuildVolumeTrend(daily),
		CSATTrend:         BuildCSATTrend(daily, s.cfg.CSATTargetPct),
		Heatmap:           heatmap,
		TopCategories:     TopCategories(tags, s.cfg.ChartTags),
		VolumeLeaderboard: TopByTickets(current, s.cfg.LeaderboardSize),
		CSATLeaderboard:   TopByCSAT(current, s.cfg.CSATBoardSize, s.cfg.CSATBoardMinLoad),
	}, nil
}

// GetKPIs returns the five metric cards.
func (s *DashboardService) GetKPIs(ctx context.Context) ([]domain.KPICard, error) {
	stats, err := s.summaryStats(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildKPIs(stats), nil
}

// GetVolumeTrend returns the daily volume series with its moving average.
func (s *DashboardService) GetVolumeTrend(ctx context.Context) ([]domain.TrendPoint, error) {
	daily, err := s.dailyMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return BuildVolumeTrend(daily), nil
}

// GetCSATTrend returns the bounded CSAT series with the target line.
func (s *DashboardService) GetCSATTrend(ctx context.Context) (*domain.CSATTrend, error) {
	daily, err := s.dailyMetrics(ctx)
	if err != nil {
		return nil, err
	}
	trend := BuildCSATTrend(daily, s.cfg.CSATTargetPct)
	return &trend, nil
}

// GetHeatmap returns the dense day-by-hour volume matrix.
func (s *DashboardService) GetHeatmap(ctx context.Context) (*domain.HeatmapMatrix, error) {
	cells, err := s.hourlyHeatmap(ctx)
	if err != nil {
		return nil, err
	}
	matrix := PivotHeatmap(cells)
	return &matrix, nil
}

// GetTopCategories returns the top tag bars for the category chart.
func (s *DashboardService) GetTopCategories(ctx context.Context) ([]domain.CategoryBar, error) {
	tags, err := s.tagAnalysis(ctx)
	if err != nil {
		return nil, err
	}
	return TopCategories(tags, s.cfg.ChartTags), nil
}

// GetLeaderboards returns the current-month volume and CSAT leaderboards.
// Both are empty when the current month has no agent rows.
func (s *DashboardService) GetLeaderboards(ctx context.Context) ([]domain.LeaderboardEntry, []domain.LeaderboardEntry, error) {
	agents, err := s.agentPerformance(ctx)
	if err != nil {
		return nil, nil, err
	}
	current := CurrentMonthAgents(agents)
	volume := TopByTickets(current, s.cfg.LeaderboardSize)
	csat := TopByCSAT(current, s.cfg.CSATBoardSize, s.cfg.CSATBoardMinLoad)
	return volume, csat, nil
}

func (s *DashboardService) buildKPIs(stats *domain.SummaryStats) []domain.KPICard {
	csat := CSATRate(stats.RatedGood, stats.RatedBad)
	csatDirection := domain.DeltaNegative
	if csat > s.cfg.CSATGoodThreshold {
		csatDirection = domain.DeltaPositive
	}

	backlogDirection := domain.DeltaNegative
	if stats.Backlog < s.cfg.BacklogThreshold {
		backlogDirection = domain.DeltaPositive
	}

	todayDelta, todayDirection := TicketDelta(stats.TodayTickets, stats.YesterdayTickets)
	todayCard := domain.KPICard{
		Label: "Today's Tickets",
		Value: fmt.Sprintf("%d", stats.TodayTickets),
	}
	// An unchanged day count renders no delta at all.
	if todayDelta != 0 {
		todayCard.Delta = fmt.Sprintf("%d vs yesterday", todayDelta)
		todayCard.DeltaDirection = todayDirection
	}

	return []domain.KPICard{
		{
			Label:          "CSAT Score",
			Value:          fmt.Sprintf("%.0f%%", csat),
			DeltaDirection: csatDirection,
		},
		{
			Label:          "Open Backlog",
			Value:          fmt.Sprintf("%d", stats.Backlog),
			DeltaDirection: backlogDirection,
		},
		{
			Label: "Avg Resolution",
			Value: fmt.Sprintf("%.1fh", stats.AvgResolutionHours),
		},
		{
			Label: "Same-Day Resolution",
			Value: fmt.Sprintf("%.0f%%", stats.SameDayPct),
		},
		todayCard,
	}
}

// freshnessStatus labels the marts live when the daily mart covers today or
// yesterday, stale otherwise (including an empty mart).
func (s *DashboardService) freshnessStatus(fresh *domain.WarehouseFreshness) domain.FreshnessStatus {
	if fresh == nil || fresh.LatestDate.IsZero() {
		return domain.FreshnessStale
	}
	today := s.clock.Now().Truncate(24 * time.Hour)
	if fresh.LatestDate.Before(today.AddDate(0, 0, -1)) {
		return domain.FreshnessStale
	}
	return domain.FreshnessLive
}
