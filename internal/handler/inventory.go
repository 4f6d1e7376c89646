package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
)

// ============================================================================
// Inventory Handler
// ============================================================================

// InventoryService is the backend surface the inventory pages need.
type InventoryService interface {
	Inventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error)
	LowStockInventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error)
	SearchInventories(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Inventory], error)
	InventoryByProduct(ctx context.Context, productID string) (*domain.Inventory, error)
	MovementsByProduct(ctx context.Context, productID string, pr domain.PageRequest) (*domain.Page[domain.StockMovement], error)
	AdjustInventory(ctx context.Context, input domain.AdjustInventoryInput) (*domain.Inventory, error)
	DeactivateInventory(ctx context.Context, productID string) error
}

// InventoryHandler serves the stock management pages.
type InventoryHandler struct {
	backend  InventoryService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewInventoryHandler(backend InventoryService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *InventoryHandler {
	return &InventoryHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// InventoryPageData feeds the inventory list template.
type InventoryPageData struct {
	PageData
	Inventories *domain.Page[domain.Inventory]
	Query       string
	LowOnly     bool
}

// List renders the stock levels, optionally filtered to low-stock rows.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	pr := parsePageRequest(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	lowOnly := r.URL.Query().Get("low") == "1"

	var (
		page *domain.Page[domain.Inventory]
		err  error
	)
	switch {
	case query != "":
		page, err = h.backend.SearchInventories(r.Context(), query, pr)
	case lowOnly:
		page, err = h.backend.LowStockInventories(r.Context(), pr)
	default:
		page, err = h.backend.Inventories(r.Context(), pr)
	}
	if err != nil {
		h.logger.Error("inventory list failed", "error", err, "query", query, "low_only", lowOnly)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "inventory/index", InventoryPageData{
		PageData:    newPageData(w, r, h.isSecure),
		Inventories: page,
		Query:       query,
		LowOnly:     lowOnly,
	})
}

// MovementsPageData feeds the per-product movement history template.
type MovementsPageData struct {
	PageData
	ProductID string
	Inventory *domain.Inventory
	Movements *domain.Page[domain.StockMovement]
}

// Movements renders the entry/exit history for one product, headed by the
// product's current stock record.
func (h *InventoryHandler) Movements(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	page, err := h.backend.MovementsByProduct(r.Context(), productID, parsePageRequest(r))
	if err != nil {
		h.logger.Error("movement history failed", "error", err, "product_id", productID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// The stock header is a nicety; a missing record does not block the
	// movement history.
	inventory, err := h.backend.InventoryByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Warn("stock lookup failed", "error", err, "product_id", productID)
		inventory = nil
	}

	h.renderer.RenderHTTP(w, "inventory/movements", MovementsPageData{
		PageData:  newPageData(w, r, h.isSecure),
		ProductID: productID,
		Inventory: inventory,
		Movements: page,
	})
}

// Adjust applies a signed stock adjustment to one product. Positive
// quantities register an entry, negative ones an exit.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryAdjust", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryAdjust", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	productID := strings.TrimSpace(r.PostFormValue("product_id"))
	if productID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryAdjust", "El producto es obligatorio."))
		return
	}

	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil || quantity == 0 {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryAdjust", "La cantidad debe ser un entero distinto de cero."))
		return
	}

	input := domain.AdjustInventoryInput{
		ProductID: productID,
		Quantity:  quantity,
		Reason:    strings.TrimSpace(r.PostFormValue("reason")),
		Location:  strings.TrimSpace(r.PostFormValue("location")),
	}
	if raw := strings.TrimSpace(r.PostFormValue("min_stock")); raw != "" {
		minStock, err := strconv.Atoi(raw)
		if err != nil || minStock < 0 {
			ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryAdjust", "El stock mínimo debe ser un entero mayor o igual a cero."))
			return
		}
		input.MinStock = &minStock
	}

	if _, err := h.backend.AdjustInventory(r.Context(), input); err != nil {
		h.logger.Error("inventory adjust failed", "error", err, "product_id", productID, "quantity", quantity)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/inventory?updated=1", http.StatusSeeOther)
}

// Deactivate retires a product's stock record so it stops showing up in the
// active inventory and reports.
func (h *InventoryHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryDeactivate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.InventoryDeactivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	productID := r.PathValue("id")
	if err := h.backend.DeactivateInventory(r.Context(), productID); err != nil {
		h.logger.Error("inventory deactivate failed", "error", err, "product_id", productID)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logger.Info("inventory deactivated", "product_id", productID)
	http.Redirect(w, r, "/dashboard/inventory?deactivated=1", http.StatusSeeOther)
}
