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
// Product Handler
// ============================================================================

// ProductService is the backend surface the product pages need.
type ProductService interface {
	Products(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Product], error)
	SearchProducts(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Product], error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id string) error
	ActivateProduct(ctx context.Context, id string) error
}

// ProductHandler serves the product catalog pages.
type ProductHandler struct {
	backend  ProductService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewProductHandler(backend ProductService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *ProductHandler {
	return &ProductHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// ProductsPageData feeds the product list template.
type ProductsPageData struct {
	PageData
	Products *domain.Page[domain.Product]
	Query    string
	Form     url.Values
	Errors   map[string]string
}

// List renders the paginated catalog, filtered by the q param.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	pr := parsePageRequest(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		page *domain.Page[domain.Product]
		err  error
	)
	if query != "" {
		page, err = h.backend.SearchProducts(r.Context(), query, pr)
	} else {
		page, err = h.backend.Products(r.Context(), pr)
	}
	if err != nil {
		h.logger.Error("product list failed", "error", err, "query", query)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "products/index", ProductsPageData{
		PageData: newPageData(w, r, h.isSecure),
		Products: page,
		Query:    query,
	})
}

// Create handles the new-product form submission.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ProductCreate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ProductCreate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	input, errs := productInputFromForm(r)
	if len(errs) > 0 {
		h.renderListWithErrors(w, r, r.PostForm, errs)
		return
	}

	if _, err := h.backend.CreateProduct(r.Context(), input); err != nil {
		if domain.ErrorCode(err) == domain.ECONFLICT {
			h.renderListWithErrors(w, r, r.PostForm, map[string]string{
				"sku": "Ya existe un producto con ese SKU.",
			})
			return
		}
		h.logger.Error("product create failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/products?created=1", http.StatusSeeOther)
}

// Update handles the edit-product form submission.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ProductUpdate", "Formulario inválido."))
		return
	}
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ProductUpdate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	input, errs := productInputFromForm(r)
	if len(errs) > 0 {
		h.renderListWithErrors(w, r, r.PostForm, errs)
		return
	}

	if _, err := h.backend.UpdateProduct(r.Context(), id, input); err != nil {
		h.logger.Error("product update failed", "error", err, "product_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/products?updated=1", http.StatusSeeOther)
}

// Deactivate soft-deletes a product.
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ProductDeactivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.DeactivateProduct(r.Context(), id); err != nil {
		h.logger.Error("product deactivate failed", "error", err, "product_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/products?deactivated=1", http.StatusSeeOther)
}

// Activate restores a deactivated product.
func (h *ProductHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !csrf.ValidateRequest(r) {
		ErrorResponse(w, r, h.logger, domain.Invalid("handler.ProductActivate", "Sesión de formulario expirada. Intenta de nuevo."))
		return
	}

	if err := h.backend.ActivateProduct(r.Context(), id); err != nil {
		h.logger.Error("product activate failed", "error", err, "product_id", id)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, "/dashboard/products?activated=1", http.StatusSeeOther)
}

func (h *ProductHandler) renderListWithErrors(w http.ResponseWriter, r *http.Request, form url.Values, errs map[string]string) {
	page, err := h.backend.Products(r.Context(), domain.PageRequest{Size: domain.DefaultPageSize})
	if err != nil {
		h.logger.Error("product list failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := ProductsPageData{
		PageData: newPageData(w, r, h.isSecure),
		Products: page,
		Form:     form,
		Errors:   errs,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.renderer.RenderHTTP(w, "products/index", data)
}

func productInputFromForm(r *http.Request) (domain.ProductInput, map[string]string) {
	input := domain.ProductInput{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		SKU:         strings.ToUpper(strings.TrimSpace(r.PostFormValue("sku"))),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}

	errs := make(map[string]string)
	if input.Name == "" {
		errs["name"] = "El nombre es obligatorio."
	}
	if input.SKU == "" {
		errs["sku"] = "El SKU es obligatorio."
	}

	price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
	if err != nil || price < 0 {
		errs["price"] = "El precio debe ser un número mayor o igual a cero."
	}
	input.Price = price

	return input, errs
}
