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
	"github.com/distria/distria/internal/metrics"
)

// ============================================================================
// Order Handler
// ============================================================================

// OrderService is the backend surface the order pages need.
type OrderService interface {
	Orders(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Order], error)
	OrdersByStatus(ctx context.Context, status domain.OrderStatus, pr domain.PageRequest) (*domain.Page[domain.Order], error)
	OrdersByClient(ctx context.Context, clientID string, pr domain.PageRequest) (*domain.Page[domain.Order], error)
	ActiveOrders(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Order], error)
	Order(ctx context.Context, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	CancelOrder(ctx context.Context, id, reason string) error
	DeactivateOrder(ctx context.Context, id string) error
	ActiveClients(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Client], error)
	Products(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Product], error)
}

// OrderHandler serves the order management pages.
type OrderHandler struct {
	backend  OrderService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewOrderHandler(backend OrderService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *OrderHandler {
	return &OrderHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// OrdersPageData feeds the order list template. Clients and Products
// populate the selects of the new-order form.
type OrdersPageData struct {
	PageData
	Orders     *domain.Page[domain.Order]
	Status     string
	ClientID   string
	ActiveOnly bool
	Clients    []domain.Client
	Products   []domain.Product
	Form       url.Values
	Errors     map[string]string
}

// formPageSize caps the option lists of the new-order form.
const formPageSize = 100

// List renders the paginated orders, filtered by status or client.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	pr := parsePageRequest(r)
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	clientID := strings.TrimSpace(r.URL.Query().Get("client"))
	activeOnly := r.URL.Query().Get("active") == "1"

	var (
		page *domain.Page[domain.Order]
		err  error
	)
	switch {
	case status != "":
		if !validOrderStatus(status) {
			ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderList", "Estado de pedido desconocido."))
			return
		}
		page, err = h.backend.OrdersByStatus(r.Context(), domain.OrderStatus(status), pr)
	case clientID != "":
		page, err = h.backend.OrdersByClient(r.Context(), clientID, pr)
	case activeOnly:
		page, err = h.backend.ActiveOrders(r.Context(), pr)
	default:
		page, err = h.backend.Orders(r.Context(), pr)
	}
	if err != nil {
		h.logger.Error("order list failed", "error", err, "status", status, "client_id", clientID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := OrdersPageData{
		PageData:   newPageData(w, r, h.isSecure),
		Orders:     page,
		Status:     status,
		ClientID:   clientID,
		ActiveOnly: activeOnly,
	}
	h.loadFormOptions(r, &data)

	h.renderer.RenderHTTP(w, "orders/index", data)
}

// OrderDetailPageData feeds the single-order template.
type OrderDetailPageData struct {
	PageData
	Order *domain.Order
}

// Detail renders one order with its line items.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, err := h.backend.Order(r.Context(), id)
	if err != nil {
		h.logger.Error("order lookup failed", "error", err, "order_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "orders/detail", OrderDetailPageData{
		PageData: newPageData(w, r, h.isSecure),
		Order:    order,
	})
}

// Create handles the new-order form. Line items arrive as parallel
// item_product/item_quantity fields, one pair per row.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderCreate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderCreate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	input, errs := orderInputFromForm(r)
	if len(errs) > 0 {
		h.renderListWithErrors(w, r, r.PostForm, errs)
		return
	}

	order, err := h.backend.CreateOrder(r.Context(), input)
	if err != nil {
		if domain.ErrorCode(err) == domain.EINVALID {
			h.renderListWithErrors(w, r, r.PostForm, map[string]string{
				"items": domain.ErrorMessage(err),
			})
			return
		}
		h.logger.Error("order create failed", "error", err, "client_id", input.ClientID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "client_id", input.ClientID, "total", order.Total)
	metrics.OrdersCreated.Inc()
	http.Redirect(w, r, "/dashboard/orders/"+order.ID+"?created=1", http.StatusSeeOther)
}

// UpdateStatus advances an order through its lifecycle.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderStatus", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderStatus", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	status := strings.TrimSpace(r.PostFormValue("status"))
	if !validOrderStatus(status) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderStatus", "Estado de pedido desconocido."))
		return
	}

	if _, err := h.backend.UpdateOrderStatus(r.Context(), id, domain.OrderStatus(status)); err != nil {
		h.logger.Error("order status update failed", "error", err, "order_id", id, "status", status)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	redirectTo := r.PostFormValue("return_to")
	if !isSafeRedirectURL(redirectTo) {
		redirectTo = "/dashboard/orders/" + id + "?updated=1"
	}
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}

// Cancel cancels an order with an optional reason.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderCancel", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderCancel", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	reason := strings.TrimSpace(r.PostFormValue("reason"))
	if err := h.backend.CancelOrder(r.Context(), id, reason); err != nil {
		h.logger.Error("order cancel failed", "error", err, "order_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/orders?canceled=1", http.StatusSeeOther)
}

// Deactivate archives a finished order so it drops out of the active list.
func (h *OrderHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderDeactivate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.OrderDeactivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.DeactivateOrder(r.Context(), id); err != nil {
		h.logger.Error("order deactivate failed", "error", err, "order_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/orders?archived=1", http.StatusSeeOther)
}

// loadFormOptions fills the client and product selects. A failure here is
// logged but does not fail the page; the list is still useful without the
// create form.
func (h *OrderHandler) loadFormOptions(r *http.Request, data *OrdersPageData) {
	formPR := domain.PageRequest{Size: formPageSize}
	if clients, err := h.backend.ActiveClients(r.Context(), formPR); err != nil {
		h.logger.Warn("order form clients unavailable", "error", err)
	} else {
		data.Clients = clients.Content
	}
	if products, err := h.backend.Products(r.Context(), formPR); err != nil {
		h.logger.Warn("order form products unavailable", "error", err)
	} else {
		data.Products = products.Content
	}
}

func (h *OrderHandler) renderListWithErrors(w http.ResponseWriter, r *http.Request, form url.Values, errs map[string]string) {
	page, err := h.backend.Orders(r.Context(), domain.PageRequest{Size: domain.DefaultPageSize})
	if err != nil {
		h.logger.Error("order list failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := OrdersPageData{
		PageData: newPageData(w, r, h.isSecure),
		Orders:   page,
		Form:     form,
		Errors:   errs,
	}
	h.loadFormOptions(r, &data)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderer.RenderHTTP(w, "orders/index", data)
}

func orderInputFromForm(r *http.Request) (domain.CreateOrderInput, map[string]string) {
	input := domain.CreateOrderInput{
		ClientID:        strings.TrimSpace(r.PostFormValue("client_id")),
		DeliveryAddress: strings.TrimSpace(r.PostFormValue("delivery_address")),
		Notes:           strings.TrimSpace(r.PostFormValue("notes")),
	}

	errs := make(map[string]string)
	if input.ClientID == "" {
		errs["client_id"] = "El cliente es obligatorio."
	}
	if input.DeliveryAddress == "" {
		errs["delivery_address"] = "La dirección de entrega es obligatoria."
	}

	productIDs := r.PostForm["item_product"]
	quantities := r.PostForm["item_quantity"]
	if len(productIDs) == 0 || len(productIDs) != len(quantities) {
		errs["items"] = "El pedido debe tener al menos un producto."
		return input, errs
	}

	for i, productID := range productIDs {
		productID = strings.TrimSpace(productID)
		if productID == "" {
			continue
		}
		quantity, err := strconv.Atoi(quantities[i])
		if err != nil || quantity <= 0 {
			errs["items"] = "Cada producto necesita una cantidad mayor a cero."
			return input, errs
		}
		input.Items = append(input.Items, domain.OrderItemInput{
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	if len(input.Items) == 0 {
		errs["items"] = "El pedido debe tener al menos un producto."
	}

	return input, errs
}

func validOrderStatus(status string) bool {
	switch domain.OrderStatus(status) {
	case domain.OrderPending, domain.OrderProcessed, domain.OrderEnRoute, domain.OrderDelivered, domain.OrderCanceled:
		return true
	}
	return false
}
