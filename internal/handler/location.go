package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
)

// ============================================================================
// Company Location Handler
// ============================================================================

// LocationService is the backend surface the company location page needs.
type LocationService interface {
	UpdateCompanyLocation(ctx context.Context, userID string, input domain.CompanyLocationInput) (*domain.User, error)
	ActiveClients(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Client], error)
}

// LocationHandler serves the company location map page. The company
// coordinates live on the admin's own user record.
type LocationHandler struct {
	backend  LocationService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewLocationHandler(backend LocationService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *LocationHandler {
	return &LocationHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// LocationPageData feeds the map template. Clients supplies the markers
// for every geocoded client.
type LocationPageData struct {
	PageData
	Clients []domain.Client
}

// Show renders the map with the company pin and client markers. The
// company coordinates come off the verified user in the request context.
func (h *LocationHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := LocationPageData{PageData: newPageData(w, r, h.isSecure)}

	if clients, err := h.backend.ActiveClients(r.Context(), domain.PageRequest{Size: formPageSize}); err != nil {
		h.logger.Warn("client markers unavailable", "error", err)
	} else {
		for _, c := range clients.Content {
			if c.HasLocation() {
				data.Clients = append(data.Clients, c)
			}
		}
	}

	h.renderer.RenderHTTP(w, "location", data)
}

// Update stores the company location picked on the map.
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.LocationUpdate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.LocationUpdate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	lat, latErr := strconv.ParseFloat(r.PostFormValue("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(r.PostFormValue("longitude"), 64)
	if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.LocationUpdate", "Coordenadas inválidas."))
		return
	}

	input := domain.CompanyLocationInput{
		CompanyName:    strings.TrimSpace(r.PostFormValue("company_name")),
		CompanyAddress: strings.TrimSpace(r.PostFormValue("company_address")),
		Latitude:       lat,
		Longitude:      lng,
	}
	if _, err := h.backend.UpdateCompanyLocation(r.Context(), user.ID, input); err != nil {
		h.logger.Error("company location update failed", "error", err, "user_id", user.ID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/company/location?updated=1", http.StatusSeeOther)
}
