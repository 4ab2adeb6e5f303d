package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/support-analytics-backend/internal/core/domain"
	"github.com/lorrc/support-analytics-backend/internal/core/ports"
)

// DashboardHandler serves the dashboard view model. Every request is a
// fresh stateless pass through cache-or-fetch, reshape, respond.
type DashboardHandler struct {
	service      ports.DashboardService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewDashboardHandler(service ports.DashboardService, errorHandler *ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterRoutes mounts the dashboard endpoints on the given router.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetDashboard)
	r.Get("/kpis", h.HandleGetKPIs)
	r.Get("/trends/volume", h.HandleGetVolumeTrend)
	r.Get("/trends/csat", h.HandleGetCSATTrend)
	r.Get("/heatmap", h.HandleGetHeatmap)
	r.Get("/categories", h.HandleGetCategories)
	r.Get("/agents", h.HandleGetLeaderboards)
}

// HandleGetDashboard returns the complete view model for one render pass.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.GetDashboard(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, dashboard)
}

// HandleGetKPIs returns the five metric cards.
func (h *DashboardHandler) HandleGetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.GetKPIs(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, kpis)
}

// HandleGetVolumeTrend returns the daily volume series with its moving average.
func (h *DashboardHandler) HandleGetVolumeTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.GetVolumeTrend(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, trend)
}

// HandleGetCSATTrend returns the bounded CSAT series with the target line.
func (h *DashboardHandler) HandleGetCSATTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.GetCSATTrend(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, trend)
}

// HandleGetHeatmap returns the dense day-by-hour volume matrix.
func (h *DashboardHandler) HandleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.service.GetHeatmap(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, matrix)
}

// HandleGetCategories returns the top tag bars. An empty warehouse result
// yields zero bars, not an error.
func (h *DashboardHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetTopCategories(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, categories)
}

// LeaderboardsResponse carries both current-month agent boards.
type LeaderboardsResponse struct {
	Volume []domain.LeaderboardEntry `json:"volume"`
	CSAT   []domain.LeaderboardEntry `json:"csat"`
}

// HandleGetLeaderboards returns the current-month agent boards. Both are
// empty when the month has no agent rows; that is a valid response.
func (h *DashboardHandler) HandleGetLeaderboards(w http.ResponseWriter, r *http.Request) {
	volume, csat, err := h.service.GetLeaderboards(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, LeaderboardsResponse{Volume: volume, CSAT: csat})
}
