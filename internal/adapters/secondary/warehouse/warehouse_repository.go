// Package warehouse is the pgx adapter over the externally-owned mart
// views. This service is a pure consumer: it never defines or mutates the
// schema, it only reads the row shapes the marts promise.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/support-analytics-backend/internal/core/domain"
	apperrors "github.com/lorrc/support-analytics-backend/internal/core/errors"
	"github.com/lorrc/support-analytics-backend/internal/core/ports"
)

// Options sizes the trailing query windows and bounds query latency.
type Options struct {
	QueryTimeout time.Duration
	TrendDays    int // daily metrics lookback
	HeatmapDays  int // heatmap lookback
	TopTags      int // tag analysis row cap
}

func (o Options) withDefaults() Options {
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 30 * time.Second
	}
	if o.TrendDays <= 0 {
		o.TrendDays = 90
	}
	if o.HeatmapDays <= 0 {
		o.HeatmapDays = 30
	}
	if o.TopTags <= 0 {
		o.TopTags = 15
	}
	return o
}

// Repository runs the six fixed read statements. The only runtime input is
// the clock, which anchors the trailing windows. Every query carries the
// configured timeout so a slow warehouse cannot stall a render forever.
type Repository struct {
	pool  *pgxpool.Pool
	clock ports.Clock
	opts  Options
}

var _ ports.WarehouseRepository = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool, clk ports.Clock, opts Options) *Repository {
	return &Repository{pool: pool, clock: clk, opts: opts.withDefaults()}
}

func (r *Repository) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opts.QueryTimeout)
}

// Ping reports whether the warehouse connection is usable. Used by the
// readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// DailyMetrics returns the trailing window of daily volume and CSAT, newest
// first as the mart orders them.
func (r *Repository) DailyMetrics(ctx context.Context) ([]domain.DailyMetric, error) {
	const query = `
SELECT created_date, ticket_count, csat_rate
FROM mart_zendesk.dim_daily_metrics
WHERE created_date <= $1::date
ORDER BY created_date DESC
LIMIT $2
`

	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, r.clock.Now(), r.opts.TrendDays)
	if err != nil {
		return nil, queryErr("daily metrics", err)
	}
	defer rows.Close()

	metrics := make([]domain.DailyMetric, 0, r.opts.TrendDays)
	for rows.Next() {
		var (
			date time.Time
			m    domain.DailyMetric
			rate pgtype.Float8
		)
		if err := rows.Scan(&date, &m.TicketCount, &rate); err != nil {
			return nil, queryErr("daily metrics", err)
		}
		m.Date = date
		m.CSATRate = floatOrZero(rate)
		if err := m.Validate(); err != nil {
			return nil, rowErr(err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("daily metrics", err)
	}

	return metrics, nil
}

// AgentPerformance returns agent-month rows for the trailing three months,
// newest month first, busiest agents first within a month.
func (r *Repository) AgentPerformance(ctx context.Context) ([]domain.AgentPerformance, error) {
	const query = `
SELECT agent_name, created_month, tickets_handled, csat_rate
FROM mart_zendesk.dim_agent_performance
WHERE created_month >= date_trunc('month', $1::date) - interval '3 months'
ORDER BY created_month DESC, tickets_handled DESC
`

	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, r.clock.Now())
	if err != nil {
		return nil, queryErr("agent performance", err)
	}
	defer rows.Close()

	agents := make([]domain.AgentPerformance, 0)
	for rows.Next() {
		var (
			a    domain.AgentPerformance
			rate pgtype.Float8
		)
		if err := rows.Scan(&a.AgentName, &a.CreatedMonth, &a.TicketsHandled, &rate); err != nil {
			return nil, queryErr("agent performance", err)
		}
		a.CSATRate = floatOrZero(rate)
		if err := a.Validate(); err != nil {
			return nil, rowErr(err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("agent performance", err)
	}

	return agents, nil
}

// SummaryStats returns the single-row aggregate over the ticket fact table.
// Rating counts come back raw; the rate is derived in the view model.
func (r *Repository) SummaryStats(ctx context.Context) (*domain.SummaryStats, error) {
	const query = `
SELECT
    COUNT(*) AS total_tickets,
    COUNT(*) FILTER (WHERE status IN ('open', 'pending', 'new')) AS backlog,
    ROUND((AVG(resolution_minutes_business) / 60)::numeric, 1) AS avg_resolution_hours,
    ROUND(100.0 * COUNT(*) FILTER (WHERE resolved_same_day)
        / NULLIF(COUNT(*) FILTER (WHERE is_resolved), 0), 1) AS same_day_pct,
    COUNT(*) FILTER (WHERE csat_score = 'good') AS rated_good,
    COUNT(*) FILTER (WHERE csat_score = 'bad') AS rated_bad,
    COUNT(*) FILTER (WHERE created_at::date = $1::date) AS today_tickets,
    COUNT(*) FILTER (WHERE created_at::date = $1::date - 1) AS yesterday_tickets,
    ROUND(100.0 * COUNT(*) FILTER (WHERE first_response_under_1hr)
        / NULLIF(COUNT(*), 0), 1) AS fast_response_pct
FROM mart_zendesk.fct_ticket_summary
`

	var (
		stats        domain.SummaryStats
		avgRes       pgtype.Float8
		sameDay      pgtype.Float8
		fastResponse pgtype.Float8
	)
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	err := r.pool.QueryRow(ctx, query, r.clock.Now()).Scan(
		&stats.TotalTickets,
		&stats.Backlog,
		&avgRes,
		&sameDay,
		&stats.RatedGood,
		&stats.RatedBad,
		&stats.TodayTickets,
		&stats.YesterdayTickets,
		&fastResponse,
	)
	if err != nil {
		return nil, queryErr("summary stats", err)
	}

	stats.AvgResolutionHours = floatOrZero(avgRes)
	stats.SameDayPct = floatOrZero(sameDay)
	stats.FastResponsePct = floatOrZero(fastResponse)

	if err := stats.Validate(); err != nil {
		return nil, rowErr(err)
	}

	return &stats, nil
}

// TagAnalysis returns the top tags by volume over the trailing three-month
// window, busiest first.
func (r *Repository) TagAnalysis(ctx context.Context) ([]domain.TagAnalysis, error) {
	const query = `
SELECT
    tag,
    SUM(ticket_count) AS total_tickets,
    AVG(avg_resolution_minutes) AS avg_resolution,
    AVG(csat_rate) AS avg_csat
FROM mart_zendesk.dim_tag_analysis
WHERE created_month >= date_trunc('month', $1::date) - interval '2 months'
GROUP BY tag
ORDER BY total_tickets DESC, tag
LIMIT $2
`

	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, r.clock.Now(), r.opts.TopTags)
	if err != nil {
		return nil, queryErr("tag analysis", err)
	}
	defer rows.Close()

	tags := make([]domain.TagAnalysis, 0, r.opts.TopTags)
	for rows.Next() {
		var (
			t      domain.TagAnalysis
			avgRes pgtype.Float8
			avgCS  pgtype.Float8
		)
		if err := rows.Scan(&t.Tag, &t.TotalTickets, &avgRes, &avgCS); err != nil {
			return nil, queryErr("tag analysis", err)
		}
		t.AvgResolutionMinutes = floatOrZero(avgRes)
		t.AvgCSAT = floatOrZero(avgCS)
		if err := t.Validate(); err != nil {
			return nil, rowErr(err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("tag analysis", err)
	}

	return tags, nil
}

// HourlyHeatmap returns ticket creation counts bucketed by day of week and
// hour over the trailing heatmap window.
func (r *Repository) HourlyHeatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	const query = `
SELECT created_day_of_week, created_hour, COUNT(*) AS ticket_count
FROM mart_zendesk.fct_ticket_summary
WHERE created_date >= $1::date - $2::int
GROUP BY 1, 2
`

	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, r.clock.Now(), r.opts.HeatmapDays)
	if err != nil {
		return nil, queryErr("hourly heatmap", err)
	}
	defer rows.Close()

	cells := make([]domain.HeatmapCell, 0)
	for rows.Next() {
		var c domain.HeatmapCell
		if err := rows.Scan(&c.DayOfWeek, &c.Hour, &c.TicketCount); err != nil {
			return nil, queryErr("hourly heatmap", err)
		}
		if err := c.Validate(); err != nil {
			return nil, rowErr(err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("hourly heatmap", err)
	}

	return cells, nil
}

// Freshness returns the most recent date present in the daily mart. An empty
// mart reports a zero LatestDate.
func (r *Repository) Freshness(ctx context.Context) (*domain.WarehouseFreshness, error) {
	const query = `SELECT MAX(created_date) FROM mart_zendesk.dim_daily_metrics`

	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var latest pgtype.Date
	if err := r.pool.QueryRow(ctx, query).Scan(&latest); err != nil {
		return nil, queryErr("freshness", err)
	}

	fresh := &domain.WarehouseFreshness{}
	if latest.Valid {
		fresh.LatestDate = latest.Time
	}
	return fresh, nil
}

func queryErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrQueryFailed, op, err)
}

func rowErr(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrMalformedRow, err)
}

func floatOrZero(f pgtype.Float8) float64 {
	if f.Valid {
		return f.Float64
	}
	return 0
}
