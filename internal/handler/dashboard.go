package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/domain"
)

// ============================================================================
// Dashboard Handler
// ============================================================================

// StatsService provides the aggregated figures for the dashboards.
type StatsService interface {
	AdminStats(ctx context.Context) (*domain.AdminStats, error)
	CourierStats(ctx context.Context, courierID string) (*domain.CourierStats, error)
	RoutesByCourier(ctx context.Context, courierID string, pr domain.PageRequest) (*domain.Page[domain.Route], error)
}

// DashboardHandler renders the role-specific landing pages.
type DashboardHandler struct {
	backend  StatsService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewDashboardHandler(backend StatsService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *DashboardHandler {
	return &DashboardHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// DashboardPageData feeds the admin dashboard template.
type DashboardPageData struct {
	PageData
	Stats *domain.AdminStats
}

// Dashboard renders the admin dashboard with the aggregated stats.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backend.AdminStats(r.Context())
	if err != nil {
		h.logger.Error("admin stats failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "dashboard", DashboardPageData{
		PageData: newPageData(w, r, h.isSecure),
		Stats:    stats,
	})
}

// CourierDashboardPageData feeds the courier dashboard template.
type CourierDashboardPageData struct {
	PageData
	Stats  *domain.CourierStats
	Routes *domain.Page[domain.Route]
}

// CourierDashboard renders the courier's own stats and current routes.
func (h *DashboardHandler) CourierDashboard(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	stats, err := h.backend.CourierStats(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("courier stats failed", "error", err, "courier_id", user.ID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	routes, err := h.backend.RoutesByCourier(r.Context(), user.ID, parsePageRequest(r))
	if err != nil {
		h.logger.Error("courier routes failed", "error", err, "courier_id", user.ID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "courier-dashboard", CourierDashboardPageData{
		PageData: newPageData(w, r, h.isSecure),
		Stats:    stats,
		Routes:   routes,
	})
}
