package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/metrics"
	"github.com/distria/distria/internal/report"
)

// ============================================================================
// Report Handler
// ============================================================================

// ReportService is the backend surface the report downloads need.
type ReportService interface {
	ActiveInventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error)
	Orders(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Order], error)
	Routes(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Route], error)
}

// ReportHandler serves the reports page and the PDF downloads.
type ReportHandler struct {
	backend   ReportService
	generator *report.PDFGenerator
	renderer  TemplateRenderer
	logger    *slog.Logger
	isSecure  bool
}

func NewReportHandler(backend ReportService, generator *report.PDFGenerator, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *ReportHandler {
	return &ReportHandler{
		backend:   backend,
		generator: generator,
		renderer:  renderer,
		logger:    logger,
		isSecure:  isSecure,
	}
}

// Index renders the reports page with the download links.
func (h *ReportHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "reports/index", struct {
		PageData
	}{
		PageData: newPageData(w, r, h.isSecure),
	})
}

// reportPageSize is the page size used when draining paginated data for a
// report.
const reportPageSize = 100

// maxReportPages bounds how much data a single report will pull.
const maxReportPages = 50

// InventoryPDF streams the inventory report.
func (h *ReportHandler) InventoryPDF(w http.ResponseWriter, r *http.Request) {
	inventories, err := drainPages(r.Context(), h.backend.ActiveInventories)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("inventory_error").Inc()
		h.logger.Error("inventory report data failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := time.Now()
	setPDFHeaders(w, fmt.Sprintf("inventario-%s.pdf", now.Format("2006-01-02")))
	if _, err := h.generator.InventoryReport(h.companyName(r), inventories, now, w); err != nil {
		// Headers are already written; log and bail.
		h.logger.Error("inventory report render failed", "error", err)
		return
	}

	metrics.ReportsGenerated.WithLabelValues("inventory").Inc()
	h.logger.Info("report generated", "type", "inventory", "rows", len(inventories))
}

// OrdersPDF streams the orders report.
func (h *ReportHandler) OrdersPDF(w http.ResponseWriter, r *http.Request) {
	orders, err := drainPages(r.Context(), h.backend.Orders)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("orders_error").Inc()
		h.logger.Error("orders report data failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := time.Now()
	setPDFHeaders(w, fmt.Sprintf("pedidos-%s.pdf", now.Format("2006-01-02")))
	if _, err := h.generator.OrdersReport(h.companyName(r), orders, now, w); err != nil {
		h.logger.Error("orders report render failed", "error", err)
		return
	}

	metrics.ReportsGenerated.WithLabelValues("orders").Inc()
	h.logger.Info("report generated", "type", "orders", "rows", len(orders))
}

// RoutesPDF streams the delivery routes report.
func (h *ReportHandler) RoutesPDF(w http.ResponseWriter, r *http.Request) {
	routes, err := drainPages(r.Context(), h.backend.Routes)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("routes_error").Inc()
		h.logger.Error("routes report data failed", "error", err)
		ErrorResponse(w, r, h.logger, err)
		return
	}

	now := time.Now()
	setPDFHeaders(w, fmt.Sprintf("rutas-%s.pdf", now.Format("2006-01-02")))
	if _, err := h.generator.RoutesReport(h.companyName(r), routes, now, w); err != nil {
		h.logger.Error("routes report render failed", "error", err)
		return
	}

	metrics.ReportsGenerated.WithLabelValues("routes").Inc()
	h.logger.Info("report generated", "type", "routes", "rows", len(routes))
}

// companyName pulls the company name off the verified user, falling back
// to the product name.
func (h *ReportHandler) companyName(r *http.Request) string {
	if user := auth.GetUser(r.Context()); user != nil && user.CompanyName != "" {
		return user.CompanyName
	}
	return "DistrIA"
}

func setPDFHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// drainPages walks a paginated backend listing until the last page,
// bounded by maxReportPages.
func drainPages[T any](ctx context.Context, fetch func(context.Context, domain.PageRequest) (*domain.Page[T], error)) ([]T, error) {
	var all []T
	for page := 0; page < maxReportPages; page++ {
		p, err := fetch(ctx, domain.PageRequest{Page: page, Size: reportPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, p.Content...)
		if page >= p.TotalPages-1 {
			break
		}
	}
	return all, nil
}
