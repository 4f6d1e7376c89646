package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
)

// ============================================================================
// Route Handler
// ============================================================================

// RouteService is the backend surface the delivery route pages need.
type RouteService interface {
	Routes(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Route], error)
	ActiveRoutes(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Route], error)
	RoutesByStatus(ctx context.Context, status domain.RouteStatus, pr domain.PageRequest) (*domain.Page[domain.Route], error)
	RoutesByCourier(ctx context.Context, courierID string, pr domain.PageRequest) (*domain.Page[domain.Route], error)
	Route(ctx context.Context, id string) (*domain.Route, error)
	CreateRoute(ctx context.Context, input domain.CreateRouteInput) (*domain.Route, error)
	AssignOrders(ctx context.Context, input domain.AssignOrdersInput) (*domain.Route, error)
	RemoveOrder(ctx context.Context, routeID, orderID string) (*domain.Route, error)
	UpdateRouteStatus(ctx context.Context, routeID string, status domain.RouteStatus) error
	DeactivateRoute(ctx context.Context, routeID string) error
	DeleteRoute(ctx context.Context, routeID string) error
	UsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ActiveUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	OrdersByStatus(ctx context.Context, status domain.OrderStatus, pr domain.PageRequest) (*domain.Page[domain.Order], error)
}

// RouteHandler serves the route planning pages.
type RouteHandler struct {
	backend  RouteService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewRouteHandler(backend RouteService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *RouteHandler {
	return &RouteHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// RoutesPageData feeds the route list template. Couriers and
// PendingOrders populate the selects of the new-route form.
type RoutesPageData struct {
	PageData
	Routes        *domain.Page[domain.Route]
	Status        string
	CourierID     string
	ActiveOnly    bool
	Couriers      []domain.User
	AllCouriers   []domain.User
	PendingOrders []domain.Order
	Form          url.Values
	Errors        map[string]string
}

// List renders the paginated routes, filtered by status, by courier, or
// narrowed to active routes only.
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	pr := parsePageRequest(r)
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	courierID := strings.TrimSpace(r.URL.Query().Get("courier"))
	activeOnly := r.URL.Query().Get("active") == "1"

	var (
		page *domain.Page[domain.Route]
		err  error
	)
	switch {
	case status != "":
		if !validRouteStatus(status) {
			ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteList", "Estado de ruta desconocido."))
			return
		}
		page, err = h.backend.RoutesByStatus(r.Context(), domain.RouteStatus(status), pr)
	case courierID != "":
		page, err = h.backend.RoutesByCourier(r.Context(), courierID, pr)
	case activeOnly:
		page, err = h.backend.ActiveRoutes(r.Context(), pr)
	default:
		page, err = h.backend.Routes(r.Context(), pr)
	}
	if err != nil {
		h.logger.Error("route list failed", "error", err, "status", status, "courier_id", courierID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := RoutesPageData{
		PageData:   newPageData(w, r, h.isSecure),
		Routes:     page,
		Status:     status,
		CourierID:  courierID,
		ActiveOnly: activeOnly,
	}
	h.loadFormOptions(r, &data)

	h.renderer.RenderHTTP(w, "routes/index", data)
}

// RouteDetailPageData feeds the single-route template. AssignableOrders
// populates the add-orders select.
type RouteDetailPageData struct {
	PageData
	Route            *domain.Route
	AssignableOrders []domain.Order
}

// Detail renders one route with its assigned orders.
func (h *RouteHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	route, err := h.backend.Route(r.Context(), id)
	if err != nil {
		h.logger.Error("route lookup failed", "error", err, "route_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if !h.canAccessRoute(r, route) {
		ForbiddenResponse(w, r, h.logger)
		return
	}

	data := RouteDetailPageData{
		PageData: newPageData(w, r, h.isSecure),
		Route:    route,
	}
	user := auth.GetUser(r.Context())
	if user != nil && user.Role == domain.RoleAdmin {
		if pending, err := h.backend.OrdersByStatus(r.Context(), domain.OrderPending, domain.PageRequest{Size: formPageSize}); err != nil {
			h.logger.Warn("assignable orders unavailable", "error", err, "route_id", id)
		} else {
			data.AssignableOrders = pending.Content
		}
	}

	h.renderer.RenderHTTP(w, "routes/detail", data)
}

// Create handles the new-route form submission.
func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteCreate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteCreate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	input, errs := routeInputFromForm(r)
	if len(errs) > 0 {
		h.renderListWithErrors(w, r, r.PostForm, errs)
		return
	}

	route, err := h.backend.CreateRoute(r.Context(), input)
	if err != nil {
		if domain.ErrorCode(err) == domain.EINVALID {
			h.renderListWithErrors(w, r, r.PostForm, map[string]string{
				"orders": domain.ErrorMessage(err),
			})
			return
		}
		h.logger.Error("route create failed", "error", err, "courier_id", input.CourierID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/routes/"+route.ID+"?created=1", http.StatusSeeOther)
}

// Assign adds pending orders to an existing route.
func (h *RouteHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteAssign", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteAssign", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	orderIDs := cleanIDList(r.PostForm["order_id"])
	if len(orderIDs) == 0 {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteAssign", "Selecciona al menos un pedido."))
		return
	}

	input := domain.AssignOrdersInput{RouteID: id, OrderIDs: orderIDs}
	if _, err := h.backend.AssignOrders(r.Context(), input); err != nil {
		h.logger.Error("route assign failed", "error", err, "route_id", id, "orders", len(orderIDs))
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/routes/"+id+"?updated=1", http.StatusSeeOther)
}

// RemoveOrder takes one order off a route.
func (h *RouteHandler) RemoveOrder(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	orderID := r.PathValue("orderID")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteRemoveOrder", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if _, err := h.backend.RemoveOrder(r.Context(), routeID, orderID); err != nil {
		h.logger.Error("route remove order failed", "error", err, "route_id", routeID, "order_id", orderID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/routes/"+routeID+"?updated=1", http.StatusSeeOther)
}

// UpdateStatus advances a route through its lifecycle. Couriers may only
// touch their own routes.
func (h *RouteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteStatus", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteStatus", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	status := strings.TrimSpace(r.PostFormValue("status"))
	if !validRouteStatus(status) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteStatus", "Estado de ruta desconocido."))
		return
	}

	route, err := h.backend.Route(r.Context(), id)
	if err != nil {
		h.logger.Error("route lookup failed", "error", err, "route_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if !h.canAccessRoute(r, route) {
		ForbiddenResponse(w, r, h.logger)
		return
	}

	if err := h.backend.UpdateRouteStatus(r.Context(), id, domain.RouteStatus(status)); err != nil {
		h.logger.Error("route status update failed", "error", err, "route_id", id, "status", status)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	redirectTo := r.PostFormValue("return_to")
	if !isSafeRedirectURL(redirectTo) {
		redirectTo = "/dashboard/routes/" + id + "?updated=1"
	}
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}

// Deactivate soft-deletes a route.
func (h *RouteHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteDeactivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.DeactivateRoute(r.Context(), id); err != nil {
		h.logger.Error("route deactivate failed", "error", err, "route_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/routes?deactivated=1", http.StatusSeeOther)
}

// Delete permanently removes a route.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.RouteDelete", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.DeleteRoute(r.Context(), id); err != nil {
		h.logger.Error("route delete failed", "error", err, "route_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/routes?deleted=1", http.StatusSeeOther)
}

// canAccessRoute reports whether the requesting user may see or modify the
// route. Admins see everything; couriers only their own routes.
func (h *RouteHandler) canAccessRoute(r *http.Request, route *domain.Route) bool {
	user := auth.GetUser(r.Context())
	if user == nil {
		return false
	}
	if user.Role == domain.RoleAdmin {
		return true
	}
	return route.Courier != nil && route.Courier.ID == user.ID
}

func (h *RouteHandler) loadFormOptions(r *http.Request, data *RoutesPageData) {
	if couriers, err := h.backend.ActiveUsersByRole(r.Context(), domain.RoleCourier); err != nil {
		h.logger.Warn("route form couriers unavailable", "error", err)
	} else {
		data.Couriers = couriers
	}
	// The filter select includes inactive couriers so routes assigned to a
	// former courier stay reachable.
	if couriers, err := h.backend.UsersByRole(r.Context(), domain.RoleCourier); err != nil {
		h.logger.Warn("courier filter unavailable", "error", err)
	} else {
		data.AllCouriers = couriers
	}
	if pending, err := h.backend.OrdersByStatus(r.Context(), domain.OrderPending, domain.PageRequest{Size: formPageSize}); err != nil {
		h.logger.Warn("route form orders unavailable", "error", err)
	} else {
		data.PendingOrders = pending.Content
	}
}

func (h *RouteHandler) renderListWithErrors(w http.ResponseWriter, r *http.Request, form url.Values, errs map[string]string) {
	page, err := h.backend.Routes(r.Context(), domain.PageRequest{Size: domain.DefaultPageSize})
	if err != nil {
		h.logger.Error("route list failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := RoutesPageData{
		PageData: newPageData(w, r, h.isSecure),
		Routes:   page,
		Form:     form,
		Errors:   errs,
	}
	h.loadFormOptions(r, &data)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderer.RenderHTTP(w, "routes/index", data)
}

func routeInputFromForm(r *http.Request) (domain.CreateRouteInput, map[string]string) {
	input := domain.CreateRouteInput{
		CourierID: strings.TrimSpace(r.PostFormValue("courier_id")),
		RouteDate: strings.TrimSpace(r.PostFormValue("route_date")),
		OrderIDs:  cleanIDList(r.PostForm["order_id"]),
	}

	errs := make(map[string]string)
	if input.CourierID == "" {
		errs["courier_id"] = "El repartidor es obligatorio."
	}
	if input.RouteDate == "" {
		errs["route_date"] = "La fecha de la ruta es obligatoria."
	} else if _, err := time.Parse("2006-01-02", input.RouteDate); err != nil {
		errs["route_date"] = "La fecha debe tener el formato AAAA-MM-DD."
	}

	if raw := strings.TrimSpace(r.PostFormValue("total_km")); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil || km < 0 {
			errs["total_km"] = "La distancia debe ser un número mayor o igual a cero."
		} else {
			input.TotalKm = &km
		}
	}
	if raw := strings.TrimSpace(r.PostFormValue("estimated_min")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			errs["estimated_min"] = "El tiempo estimado debe ser un entero mayor o igual a cero."
		} else {
			input.EstimatedMin = &minutes
		}
	}

	return input, errs
}

func cleanIDList(raw []string) []string {
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func validRouteStatus(status string) bool {
	switch domain.RouteStatus(status) {
	case domain.RoutePlanned, domain.RouteInProgress, domain.RouteCompleted, domain.RouteCanceled:
		return true
	}
	return false
}
