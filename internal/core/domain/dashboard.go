package domain

import "time"

// DeltaDirection is the visual framing of a KPI delta. More tickets today
// than yesterday frames negative: it is a backlog-growth signal.
type DeltaDirection string

const (
	DeltaPositive DeltaDirection = "positive"
	DeltaNegative DeltaDirection = "negative"
)

// FreshnessStatus labels how current the warehouse marts are.
type FreshnessStatus string

const (
	FreshnessLive  FreshnessStatus = "live"
	FreshnessStale FreshnessStatus = "stale"
)

// KPICard is one formatted metric card. Delta is empty when the card has no
// comparison to show.
type KPICard struct {
	Label          string         `json:"label"`
	Value          string         `json:"value"`
	Delta          string         `json:"delta,omitempty"`
	DeltaDirection DeltaDirection `json:"deltaDirection,omitempty"`
}

// TrendPoint is one day of the volume trend, dates ascending, with the
// trailing 7-day moving average. Partial head windows average over however
// many points are available.
type TrendPoint struct {
	Date        time.Time `json:"date"`
	TicketCount int64     `json:"ticketCount"`
	MovingAvg   float64   `json:"movingAvg"`
}

// CSATPoint is one day of the CSAT trend, rate scaled to percent.
type CSATPoint struct {
	Date    time.Time `json:"date"`
	RatePct float64   `json:"ratePct"`
}

// CSATTrend is the bounded-range CSAT chart with its fixed target line.
type CSATTrend struct {
	Points    []CSATPoint `json:"points"`
	TargetPct float64     `json:"targetPct"`
	RangeMin  float64     `json:"rangeMin"`
	RangeMax  float64     `json:"rangeMax"`
}

// HeatmapMatrix is the dense day-by-hour pivot. Days run Monday..Sunday,
// hours 0..23; combinations with no tickets hold zero.
type HeatmapMatrix struct {
	Days   []string  `json:"days"`
	Hours  []int     `json:"hours"`
	Values [][]int64 `json:"values"`
}

// CategoryBar is one bar of the top-categories chart.
type CategoryBar struct {
	Tag          string  `json:"tag"`
	TicketCount  int64   `json:"ticketCount"`
	AvgCSATPct   float64 `json:"avgCsatPct"`
	AvgResMinute float64 `json:"avgResolutionMinutes"`
}

// LeaderboardEntry is one agent on a leaderboard for the current month.
type LeaderboardEntry struct {
	AgentName      string  `json:"agentName"`
	TicketsHandled int64   `json:"ticketsHandled"`
	CSATRatePct    float64 `json:"csatRatePct"`
}

// Dashboard is the complete view model for a single render pass. Leaderboard
// slices are empty (not nil in JSON terms: rendered as zero bars) when no
// agent rows exist for the current month or no agent clears the CSAT
// eligibility floor.
type Dashboard struct {
	GeneratedAt       time.Time          `json:"generatedAt"`
	Freshness         FreshnessStatus    `json:"freshness"`
	KPIs              []KPICard          `json:"kpis"`
	VolumeTrend       []TrendPoint       `json:"volumeTrend"`
	CSATTrend         CSATTrend          `json:"csatTrend"`
	Heatmap           HeatmapMatrix      `json:"heatmap"`
	TopCategories     []CategoryBar      `json:"topCategories"`
	VolumeLeaderboard []LeaderboardEntry `json:"volumeLeaderboard"`
	CSATLeaderboard   []LeaderboardEntry `json:"csatLeaderboard"`
}
