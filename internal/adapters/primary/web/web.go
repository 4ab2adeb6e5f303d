// Package web serves the single dashboard page. The page is embedded in the
// binary and renders client-side from the JSON view model; there are no
// other routes and no local state.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed static/index.html
var staticFS embed.FS

// PageData is the template context for the dashboard page.
type PageData struct {
	Title   string
	Version string
}

// Handler serves the dashboard page.
type Handler struct {
	tmpl   *template.Template
	data   PageData
	logger *slog.Logger
}

func NewHandler(title, version string, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(staticFS, "static/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		tmpl:   tmpl,
		data:   PageData{Title: title, Version: version},
		logger: logger,
	}, nil
}

// HandleIndex renders the dashboard page.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, h.data); err != nil {
		h.logger.Error("failed to render dashboard page", "error", err)
	}
}
