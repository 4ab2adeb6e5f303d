package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	api "github.com/lorrc/support-analytics-backend/internal/adapters/primary/http"
	"github.com/lorrc/support-analytics-backend/internal/core/domain"
	apperrors "github.com/lorrc/support-analytics-backend/internal/core/errors"
	"github.com/lorrc/support-analytics-backend/internal/core/mocks"
)

func newTestRouter(service *mocks.MockDashboardService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := api.NewDashboardHandler(service, api.NewErrorHandler(logger), logger)
	r := chi.NewRouter()
	r.Route("/api/v1/dashboard", handler.RegisterRoutes)
	return r
}

func sampleDashboard() *domain.Dashboard {
	day := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	return &domain.Dashboard{
		GeneratedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		Freshness:   domain.FreshnessLive,
		KPIs: []domain.KPICard{
			{Label: "CSAT Score", Value: "72%", DeltaDirection: domain.DeltaPositive},
		},
		VolumeTrend: []domain.TrendPoint{
			{Date: day, TicketCount: 40, MovingAvg: 40},
		},
		CSATTrend: domain.CSATTrend{
			Points:    []domain.CSATPoint{{Date: day, RatePct: 72}},
			TargetPct: 70,
			RangeMin:  40,
			RangeMax:  100,
		},
		TopCategories: []domain.CategoryBar{
			{Tag: "billing", TicketCount: 100, AvgCSATPct: 80},
		},
		VolumeLeaderboard: []domain.LeaderboardEntry{
			{AgentName: "avery", TicketsHandled: 40, CSATRatePct: 90},
		},
	}
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	t.Run("renders the full view model", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		service.On("GetDashboard", mock.Anything).Return(sampleDashboard(), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body domain.Dashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, domain.FreshnessLive, body.Freshness)
		require.Len(t, body.KPIs, 1)
		assert.Equal(t, "72%", body.KPIs[0].Value)
		assert.Len(t, body.VolumeTrend, 1)
		assert.Equal(t, 70.0, body.CSATTrend.TargetPct)

		service.AssertExpectations(t)
	})

	t.Run("warehouse failure yields a single error body", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		service.On("GetDashboard", mock.Anything).Return(nil, apperrors.ErrQueryFailed)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)

		var body api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "WAREHOUSE_ERROR", body.Code)
		assert.Equal(t, "The data warehouse could not be queried", body.Error)
	})

	t.Run("wrapped warehouse errors map the same way", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		service.On("GetDashboard", mock.Anything).Return(nil, apperrors.NewWarehouseError(apperrors.ErrMalformedRow))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)

		var body api.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "WAREHOUSE_ERROR", body.Code)
	})
}

func TestDashboardHandler_SectionEndpoints(t *testing.T) {
	t.Run("kpis list", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		service.On("GetKPIs", mock.Anything).Return([]domain.KPICard{
			{Label: "Open Backlog", Value: "120", DeltaDirection: domain.DeltaPositive},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/kpis", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body api.ListResponse[domain.KPICard]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 1, body.Count)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Open Backlog", body.Data[0].Label)
	})

	t.Run("empty categories is a valid response", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		service.On("GetTopCategories", mock.Anything).Return([]domain.CategoryBar{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/categories", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body api.ListResponse[domain.CategoryBar]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Count)
	})

	t.Run("heatmap matrix", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		hours := make([]int, 24)
		values := make([][]int64, len(domain.DayOrder))
		for i := range hours {
			hours[i] = i
		}
		for i := range values {
			values[i] = make([]int64, 24)
		}
		values[0][9] = 5
		matrix := &domain.HeatmapMatrix{Days: domain.DayOrder, Hours: hours, Values: values}
		service.On("GetHeatmap", mock.Anything).Return(matrix, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/heatmap", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body domain.HeatmapMatrix
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Days, 7)
		assert.Equal(t, "Monday", body.Days[0])
		assert.Equal(t, int64(5), body.Values[0][9])
	})

	t.Run("both leaderboards in one payload", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		volume := []domain.LeaderboardEntry{{AgentName: "avery", TicketsHandled: 40, CSATRatePct: 90}}
		csat := []domain.LeaderboardEntry{{AgentName: "blake", TicketsHandled: 25, CSATRatePct: 96}}
		service.On("GetLeaderboards", mock.Anything).Return(volume, csat, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/agents", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body api.LeaderboardsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Volume, 1)
		require.Len(t, body.CSAT, 1)
		assert.Equal(t, "avery", body.Volume[0].AgentName)
		assert.Equal(t, "blake", body.CSAT[0].AgentName)
	})

	t.Run("trend error surfaces as warehouse error", func(t *testing.T) {
		service := mocks.NewMockDashboardService()
		service.On("GetVolumeTrend", mock.Anything).Return(nil, apperrors.ErrWarehouseUnavailable)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/trends/volume", nil)
		rec := httptest.NewRecorder()
		newTestRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
