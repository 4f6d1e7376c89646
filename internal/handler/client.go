package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
)

// ============================================================================
// Client Handler
// ============================================================================

// ClientService is the backend surface the client pages need.
type ClientService interface {
	Clients(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Client], error)
	SearchClients(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Client], error)
	CreateClient(ctx context.Context, input domain.ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, input domain.ClientInput) (*domain.Client, error)
	DeactivateClient(ctx context.Context, id string) error
	ActivateClient(ctx context.Context, id string) error
	UpdateClientLocation(ctx context.Context, id string, input domain.ClientLocationInput) (*domain.Client, error)
}

// ClientHandler serves the client management pages.
type ClientHandler struct {
	backend  ClientService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewClientHandler(backend ClientService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *ClientHandler {
	return &ClientHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// ClientsPageData feeds the client list template.
type ClientsPageData struct {
	PageData
	Clients *domain.Page[domain.Client]
	Query   string
	Form    url.Values
	Errors  map[string]string
}

// List renders the paginated client list, filtered by the q param.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	pr := parsePageRequest(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		page *domain.Page[domain.Client]
		err  error
	)
	if query != "" {
		page, err = h.backend.SearchClients(r.Context(), query, pr)
	} else {
		page, err = h.backend.Clients(r.Context(), pr)
	}
	if err != nil {
		h.logger.Error("client list failed", "error", err, "query", query)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "clients/index", ClientsPageData{
		PageData: newPageData(w, r, h.isSecure),
		Clients:  page,
		Query:    query,
	})
}

// Create handles the new-client form submission.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientCreate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientCreate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	input, errs := clientInputFromForm(r)
	if len(errs) > 0 {
		h.renderListWithErrors(w, r, r.PostForm, errs)
		return
	}

	if _, err := h.backend.CreateClient(r.Context(), input); err != nil {
		if domain.ErrorCode(err) == domain.ECONFLICT {
			h.renderListWithErrors(w, r, r.PostForm, map[string]string{
				"email": "Ya existe un cliente con ese correo.",
			})
			return
		}
		h.logger.Error("client create failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/clients?created=1", http.StatusSeeOther)
}

// Update handles the edit-client form submission.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientUpdate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientUpdate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	input, errs := clientInputFromForm(r)
	if len(errs) > 0 {
		h.renderListWithErrors(w, r, r.PostForm, errs)
		return
	}

	if _, err := h.backend.UpdateClient(r.Context(), id, input); err != nil {
		h.logger.Error("client update failed", "error", err, "client_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/clients?updated=1", http.StatusSeeOther)
}

// Deactivate soft-deletes a client.
func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientDeactivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.DeactivateClient(r.Context(), id); err != nil {
		h.logger.Error("client deactivate failed", "error", err, "client_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/clients?deactivated=1", http.StatusSeeOther)
}

// Activate restores a deactivated client.
func (h *ClientHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientActivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.ActivateClient(r.Context(), id); err != nil {
		h.logger.Error("client activate failed", "error", err, "client_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/clients?activated=1", http.StatusSeeOther)
}

// UpdateLocation stores the coordinates picked on the map for a client.
func (h *ClientHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientLocation", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientLocation", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	lat, latErr := strconv.ParseFloat(r.PostFormValue("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(r.PostFormValue("longitude"), 64)
	if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ClientLocation", "Coordenadas inválidas."))
		return
	}

	input := domain.ClientLocationInput{
		Latitude:         lat,
		Longitude:        lng,
		AddressReference: strings.TrimSpace(r.PostFormValue("address_reference")),
	}
	if _, err := h.backend.UpdateClientLocation(r.Context(), id, input); err != nil {
		h.logger.Error("client location update failed", "error", err, "client_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/clients?updated=1", http.StatusSeeOther)
}

// renderListWithErrors re-renders the list page so the create/edit modal can
// show field errors with the submitted values preserved.
func (h *ClientHandler) renderListWithErrors(w http.ResponseWriter, r *http.Request, form url.Values, errs map[string]string) {
	page, err := h.backend.Clients(r.Context(), domain.PageRequest{Size: domain.DefaultPageSize})
	if err != nil {
		h.logger.Error("client list failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := ClientsPageData{
		PageData: newPageData(w, r, h.isSecure),
		Clients:  page,
		Form:     form,
		Errors:   errs,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderer.RenderHTTP(w, "clients/index", data)
}

func clientInputFromForm(r *http.Request) (domain.ClientInput, map[string]string) {
	input := domain.ClientInput{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Address: strings.TrimSpace(r.PostFormValue("address")),
	}

	errs := make(map[string]string)
	if input.Name == "" {
		errs["name"] = "El nombre es obligatorio."
	}
	if input.Email != "" && !isValidEmail(input.Email) {
		errs["email"] = "El correo no es válido."
	}
	if input.Address == "" {
		errs["address"] = "La dirección es obligatoria."
	}
	return input, errs
}
