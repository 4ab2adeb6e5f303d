package services

import (
	"math"
	"sort"

	"github.com/lorrc/support-analytics-backend/internal/core/domain"
)

// Pure reshaping functions over already-fetched warehouse rows. No I/O here.

// movingAverageWindow is the trailing window for the volume trend overlay.
const movingAverageWindow = 7

// BuildVolumeTrend sorts daily metrics ascending by date and attaches the
// trailing 7-day moving average to each point. The first points have fewer
// than 7 samples; their average is taken over however many points exist, so
// the first point's average equals its own count.
func BuildVolumeTrend(rows []domain.DailyMetric) []domain.TrendPoint {
	sorted := sortByDateAsc(rows)

	points := make([]domain.TrendPoint, len(sorted))
	var windowSum int64
	for i, row := range sorted {
		windowSum += row.TicketCount
		span := i + 1
		if span > movingAverageWindow {
			windowSum -= sorted[i-movingAverageWindow].TicketCount
			span = movingAverageWindow
		}
		points[i] = domain.TrendPoint{
			Date:        row.Date,
			TicketCount: row.TicketCount,
			MovingAvg:   float64(windowSum) / float64(span),
		}
	}
	return points
}

// BuildCSATTrend scales the daily CSAT fraction to percent, dates ascending,
// with the fixed target line and bounded display range.
func BuildCSATTrend(rows []domain.DailyMetric, targetPct float64) domain.CSATTrend {
	sorted := sortByDateAsc(rows)

	points := make([]domain.CSATPoint, len(sorted))
	for i, row := range sorted {
		points[i] = domain.CSATPoint{
			Date:    row.Date,
			RatePct: roundTo1(row.CSATRate * 100),
		}
	}
	return domain.CSATTrend{
		Points:    points,
		TargetPct: targetPct,
		RangeMin:  40,
		RangeMax:  100,
	}
}

func sortByDateAsc(rows []domain.DailyMetric) []domain.DailyMetric {
	sorted := make([]domain.DailyMetric, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// PivotHeatmap folds (day, hour) cells into a dense 7x24 matrix, days ordered
// Monday..Sunday. Duplicate cells sum; combinations with no rows stay zero.
// Cells are validated upstream, so unknown day names cannot reach this point.
func PivotHeatmap(cells []domain.HeatmapCell) domain.HeatmapMatrix {
	index := make(map[string]int, len(domain.DayOrder))
	for i, day := range domain.DayOrder {
		index[day] = i
	}

	values := make([][]int64, len(domain.DayOrder))
	for i := range values {
		values[i] = make([]int64, 24)
	}
	for _, cell := range cells {
		if row, ok := index[cell.DayOfWeek]; ok && cell.Hour >= 0 && cell.Hour < 24 {
			values[row][cell.Hour] += cell.TicketCount
		}
	}

	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}

	days := make([]string, len(domain.DayOrder))
	copy(days, domain.DayOrder)

	return domain.HeatmapMatrix{Days: days, Hours: hours, Values: values}
}

// CurrentMonthAgents filters agent rows down to the most recent month
// present. An empty input yields an empty output.
func CurrentMonthAgents(rows []domain.AgentPerformance) []domain.AgentPerformance {
	if len(rows) == 0 {
		return nil
	}

	maxMonth := rows[0].CreatedMonth
	for _, row := range rows[1:] {
		if row.CreatedMonth.After(maxMonth) {
			maxMonth = row.CreatedMonth
		}
	}

	current := make([]domain.AgentPerformance, 0, len(rows))
	for _, row := range rows {
		if row.CreatedMonth.Equal(maxMonth) {
			current = append(current, row)
		}
	}
	return current
}

// TopByTickets ranks agents by tickets handled descending, ties broken by
// agent name ascending, and keeps the first n.
func TopByTickets(rows []domain.AgentPerformance, n int) []domain.LeaderboardEntry {
	ranked := make([]domain.AgentPerformance, len(rows))
	copy(ranked, rows)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TicketsHandled != ranked[j].TicketsHandled {
			return ranked[i].TicketsHandled > ranked[j].TicketsHandled
		}
		return ranked[i].AgentName < ranked[j].AgentName
	})

	return toLeaderboard(ranked, n)
}

// TopByCSAT ranks agents with at least minLoad tickets by CSAT rate
// descending, ties broken by agent name ascending, and keeps the first n.
// Returns an empty slice when nobody clears the floor.
func TopByCSAT(rows []domain.AgentPerformance, n int, minLoad int64) []domain.LeaderboardEntry {
	eligible := make([]domain.AgentPerformance, 0, len(rows))
	for _, row := range rows {
		if row.TicketsHandled >= minLoad {
			eligible = append(eligible, row)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].CSATRate != eligible[j].CSATRate {
			return eligible[i].CSATRate > eligible[j].CSATRate
		}
		return eligible[i].AgentName < eligible[j].AgentName
	})

	return toLeaderboard(eligible, n)
}

func toLeaderboard(ranked []domain.AgentPerformance, n int) []domain.LeaderboardEntry {
	if n > len(ranked) {
		n = len(ranked)
	}
	entries := make([]domain.LeaderboardEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = domain.LeaderboardEntry{
			AgentName:      ranked[i].AgentName,
			TicketsHandled: ranked[i].TicketsHandled,
			CSATRatePct:    roundTo1(ranked[i].CSATRate * 100),
		}
	}
	return entries
}

// TopCategories keeps the first n tag rows (the warehouse already sorts by
// volume descending) as chart bars.
func TopCategories(rows []domain.TagAnalysis, n int) []domain.CategoryBar {
	if n > len(rows) {
		n = len(rows)
	}
	bars := make([]domain.CategoryBar, n)
	for i := 0; i < n; i++ {
		bars[i] = domain.CategoryBar{
			Tag:          rows[i].Tag,
			TicketCount:  rows[i].TotalTickets,
			AvgCSATPct:   roundTo1(rows[i].AvgCSAT * 100),
			AvgResMinute: roundTo1(rows[i].AvgResolutionMinutes),
		}
	}
	return bars
}

// TicketDelta compares today against yesterday. The delta is reported as an
// absolute count; more tickets today frames negative because rising intake
// grows the backlog.
func TicketDelta(today, yesterday int64) (int64, domain.DeltaDirection) {
	delta := today - yesterday
	if delta > 0 {
		return delta, domain.DeltaNegative
	}
	return -delta, domain.DeltaPositive
}

// CSATRate derives the satisfaction rate in percent from raw good/bad rating
// counts, rounded to one decimal. Zero rated tickets yields zero.
func CSATRate(good, bad int64) float64 {
	rated := good + bad
	if rated == 0 {
		return 0
	}
	return roundTo1(100 * float64(good) / float64(rated))
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
