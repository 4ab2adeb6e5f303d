package domain

import (
	"fmt"
	"time"
)

// Day names as the warehouse emits them in fct_ticket_summary.created_day_of_week.
// The heatmap is always rendered Monday first.
var DayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var dayIndex = func() map[string]int {
	m := make(map[string]int, len(DayOrder))
	for i, d := range DayOrder {
		m[d] = i
	}
	return m
}()

// DailyMetric is one row of dim_daily_metrics: per-day ticket volume and
// CSAT rate (fraction of rated tickets marked good, 0..1).
type DailyMetric struct {
	Date        time.Time `json:"date"`
	TicketCount int64     `json:"ticketCount"`
	CSATRate    float64   `json:"csatRate"`
}

func (m *DailyMetric) Validate() error {
	if m.Date.IsZero() {
		return fmt.Errorf("daily metric: date is zero")
	}
	if m.TicketCount < 0 {
		return fmt.Errorf("daily metric %s: negative ticket count %d", m.Date.Format("2006-01-02"), m.TicketCount)
	}
	if m.CSATRate < 0 || m.CSATRate > 1 {
		return fmt.Errorf("daily metric %s: csat rate %.4f outside [0,1]", m.Date.Format("2006-01-02"), m.CSATRate)
	}
	return nil
}

// AgentPerformance is one row of dim_agent_performance, one agent-month.
type AgentPerformance struct {
	AgentName      string    `json:"agentName"`
	CreatedMonth   time.Time `json:"createdMonth"`
	TicketsHandled int64     `json:"ticketsHandled"`
	CSATRate       float64   `json:"csatRate"`
}

func (a *AgentPerformance) Validate() error {
	if a.AgentName == "" {
		return fmt.Errorf("agent performance: empty agent name")
	}
	if a.CreatedMonth.IsZero() {
		return fmt.Errorf("agent performance %q: month is zero", a.AgentName)
	}
	if a.TicketsHandled < 0 {
		return fmt.Errorf("agent performance %q: negative tickets handled %d", a.AgentName, a.TicketsHandled)
	}
	if a.CSATRate < 0 || a.CSATRate > 1 {
		return fmt.Errorf("agent performance %q: csat rate %.4f outside [0,1]", a.AgentName, a.CSATRate)
	}
	return nil
}

// SummaryStats is the single-row aggregate over fct_ticket_summary.
// RatedGood/RatedBad are raw counts; the CSAT rate is derived in the
// view-model layer so the derivation is testable.
type SummaryStats struct {
	TotalTickets       int64   `json:"totalTickets"`
	Backlog            int64   `json:"backlog"`
	AvgResolutionHours float64 `json:"avgResolutionHours"`
	SameDayPct         float64 `json:"sameDayPct"`
	RatedGood          int64   `json:"ratedGood"`
	RatedBad           int64   `json:"ratedBad"`
	TodayTickets       int64   `json:"todayTickets"`
	YesterdayTickets   int64   `json:"yesterdayTickets"`
	FastResponsePct    float64 `json:"fastResponsePct"`
}

func (s *SummaryStats) Validate() error {
	if s.TotalTickets < 0 || s.Backlog < 0 || s.RatedGood < 0 || s.RatedBad < 0 ||
		s.TodayTickets < 0 || s.YesterdayTickets < 0 {
		return fmt.Errorf("summary stats: negative count")
	}
	if s.Backlog > s.TotalTickets {
		return fmt.Errorf("summary stats: backlog %d exceeds total %d", s.Backlog, s.TotalTickets)
	}
	if s.SameDayPct < 0 || s.SameDayPct > 100 {
		return fmt.Errorf("summary stats: same-day pct %.2f outside [0,100]", s.SameDayPct)
	}
	if s.FastResponsePct < 0 || s.FastResponsePct > 100 {
		return fmt.Errorf("summary stats: fast-response pct %.2f outside [0,100]", s.FastResponsePct)
	}
	return nil
}

// TagAnalysis is one aggregated row of dim_tag_analysis over the trailing
// three-month window, warehouse-sorted by volume descending.
type TagAnalysis struct {
	Tag                  string  `json:"tag"`
	TotalTickets         int64   `json:"totalTickets"`
	AvgResolutionMinutes float64 `json:"avgResolutionMinutes"`
	AvgCSAT              float64 `json:"avgCsat"`
}

func (t *TagAnalysis) Validate() error {
	if t.Tag == "" {
		return fmt.Errorf("tag analysis: empty tag")
	}
	if t.TotalTickets < 0 {
		return fmt.Errorf("tag analysis %q: negative ticket count %d", t.Tag, t.TotalTickets)
	}
	return nil
}

// HeatmapCell is one (day, hour) bucket of ticket creation volume over the
// trailing 30-day window.
type HeatmapCell struct {
	DayOfWeek   string `json:"dayOfWeek"`
	Hour        int    `json:"hour"`
	TicketCount int64  `json:"ticketCount"`
}

func (c *HeatmapCell) Validate() error {
	if _, ok := dayIndex[c.DayOfWeek]; !ok {
		return fmt.Errorf("heatmap cell: unknown day of week %q", c.DayOfWeek)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("heatmap cell: hour %d outside [0,23]", c.Hour)
	}
	if c.TicketCount < 0 {
		return fmt.Errorf("heatmap cell: negative ticket count %d", c.TicketCount)
	}
	return nil
}

// WarehouseFreshness reports the most recent day present in the daily mart.
// LatestDate is zero when the mart is empty.
type WarehouseFreshness struct {
	LatestDate time.Time `json:"latestDate"`
}
