package ports

import (
	"context"
	"time"

	"github.com/lorrc/support-analytics-backend/internal/core/domain"
)

// Clock abstracts "now" so query windows and cache expiry are fixable in
// tests.
type Clock interface {
	Now() time.Time
}

// WarehouseRepository is the read-only query layer over the warehouse marts.
// Each method maps to one fixed statement; the only implicit input is the
// clock-driven trailing window.
type WarehouseRepository interface {
	DailyMetrics(ctx context.Context) ([]domain.DailyMetric, error)
	AgentPerformance(ctx context.Context) ([]domain.AgentPerformance, error)
	SummaryStats(ctx context.Context) (*domain.SummaryStats, error)
	TagAnalysis(ctx context.Context) ([]domain.TagAnalysis, error)
	HourlyHeatmap(ctx context.Context) ([]domain.HeatmapCell, error)
	Freshness(ctx context.Context) (*domain.WarehouseFreshness, error)
}

// ResultCache memoizes a producer's result per key. A live entry (age under
// TTL) is returned without invoking the producer; producer errors are never
// cached.
type ResultCache interface {
	GetOrCompute(ctx context.Context, key string, producer func(context.Context) (any, error)) (any, error)
}

// DashboardService assembles the view model from cached warehouse reads.
type DashboardService interface {
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)
	GetKPIs(ctx context.Context) ([]domain.KPICard, error)
	GetVolumeTrend(ctx context.Context) ([]domain.TrendPoint, error)
	GetCSATTrend(ctx context.Context) (*domain.CSATTrend, error)
	GetHeatmap(ctx context.Context) (*domain.HeatmapMatrix, error)
	GetTopCategories(ctx context.Context) ([]domain.CategoryBar, error)
	GetLeaderboards(ctx context.Context) (volume, csat []domain.LeaderboardEntry, err error)
}
