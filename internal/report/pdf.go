package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/distria/distria/internal/domain"
)

// =============================================================================
// PDF Generator
// =============================================================================

// PDFGenerator renders the inventory and order reports as A4 PDFs.
type PDFGenerator struct {
	// Page dimensions (A4 in mm)
	pageWidth  float64
	pageHeight float64
	margin     float64

	contentWidth float64
}

// NewPDFGenerator creates a generator with default A4 settings.
func NewPDFGenerator() *PDFGenerator {
	margin := 15.0
	pageWidth := 210.0
	return &PDFGenerator{
		pageWidth:    pageWidth,
		pageHeight:   297.0,
		margin:       margin,
		contentWidth: pageWidth - (2 * margin),
	}
}

// newDoc builds a document with the shared metadata, footer and cover header.
func (g *PDFGenerator) newDoc(title, companyName string, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(companyName, true)
	pdf.SetCreator("DistrIA", true)
	pdf.SetAutoPageBreak(true, 20)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		r, gr, b := hexToRGB(brandColors.Border)
		pdf.SetDrawColor(r, gr, b)
		pdf.Line(g.margin, pdf.GetY()-3, g.pageWidth-g.margin, pdf.GetY()-3)

		r, gr, b = hexToRGB(brandColors.TextMuted)
		pdf.SetTextColor(r, gr, b)
		pdf.SetFont("Helvetica", "", 8)
		pdf.Cell(0, 10, "Generado: "+formatDateTime(generatedAt))
		pdf.SetX(-g.margin - 30)
		pdf.CellFormat(30, 10, fmt.Sprintf("Página %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Navy header band
	r, gr, b := hexToRGB(brandColors.Navy)
	pdf.SetFillColor(r, gr, b)
	pdf.Rect(0, 0, g.pageWidth, 40, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(g.margin, 12)
	pdf.Cell(0, 10, title)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(g.margin, 24)
	subtitle := companyName
	if subtitle == "" {
		subtitle = "DistrIA"
	}
	pdf.Cell(0, 8, subtitle)

	r, gr, b = hexToRGB(brandColors.TextDark)
	pdf.SetTextColor(r, gr, b)
	pdf.SetY(50)
	return pdf
}

func (g *PDFGenerator) addSectionHeader(pdf *fpdf.Fpdf, title string) {
	r, gr, b := hexToRGB(brandColors.Navy)
	pdf.SetDrawColor(r, gr, b)
	pdf.SetLineWidth(0.5)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(r, gr, b)
	pdf.Cell(0, 9, title)
	pdf.Ln(11)

	pdf.Line(g.margin, pdf.GetY(), g.pageWidth-g.margin, pdf.GetY())
	pdf.Ln(6)

	r, gr, b = hexToRGB(brandColors.TextDark)
	pdf.SetTextColor(r, gr, b)
}

// tableHeader draws a header row with the given column titles and widths.
func (g *PDFGenerator) tableHeader(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	r, gr, b := hexToRGB(brandColors.Navy)
	pdf.SetFillColor(r, gr, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "", 0, "L", true, 0, "")
	}
	pdf.Ln(8)

	r, gr, b = hexToRGB(brandColors.TextDark)
	pdf.SetTextColor(r, gr, b)
	pdf.SetFont("Helvetica", "", 9)
}

// tableRow draws one zebra-striped data row.
func (g *PDFGenerator) tableRow(pdf *fpdf.Fpdf, cells []string, widths []float64, alt bool) {
	if alt {
		r, gr, b := hexToRGB(brandColors.RowAlt)
		pdf.SetFillColor(r, gr, b)
	}
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "", 0, "L", alt, 0, "")
	}
	pdf.Ln(7)
}

func (g *PDFGenerator) output(pdf *fpdf.Fpdf, w io.Writer) (int64, error) {
	if err := pdf.Error(); err != nil {
		return 0, fmt.Errorf("pdf generation error: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("pdf output error: %w", err)
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// =============================================================================
// Inventory Report
// =============================================================================

// InventoryReport writes the current stock levels as a PDF. Low-stock rows
// are highlighted in red.
func (g *PDFGenerator) InventoryReport(companyName string, inventories []domain.Inventory, generatedAt time.Time, w io.Writer) (int64, error) {
	pdf := g.newDoc("Reporte de Inventario", companyName, generatedAt)

	low := 0
	for i := range inventories {
		if inventories[i].LowStock() {
			low++
		}
	}

	g.addSectionHeader(pdf, "Resumen")
	pdf.Cell(0, 7, fmt.Sprintf("Productos en inventario: %d", len(inventories)))
	pdf.Ln(7)
	if low > 0 {
		r, gr, b := hexToRGB(brandColors.Red)
		pdf.SetTextColor(r, gr, b)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Productos con stock bajo: %d", low))
	pdf.Ln(12)
	r, gr, b := hexToRGB(brandColors.TextDark)
	pdf.SetTextColor(r, gr, b)

	g.addSectionHeader(pdf, "Detalle de Stock")
	widths := []float64{60, 30, 22, 22, 46}
	g.tableHeader(pdf, []string{"Producto", "SKU", "Cantidad", "Mínimo", "Ubicación"}, widths)

	for i := range inventories {
		inv := &inventories[i]
		if inv.LowStock() {
			r, gr, b := hexToRGB(brandColors.Red)
			pdf.SetTextColor(r, gr, b)
		}
		location := inv.Location
		if location == "" {
			location = "-"
		}
		g.tableRow(pdf, []string{
			inv.Product.Name,
			inv.Product.SKU,
			fmt.Sprintf("%d", inv.Quantity),
			fmt.Sprintf("%d", inv.MinStock),
			location,
		}, widths, i%2 == 1)
		if inv.LowStock() {
			r, gr, b := hexToRGB(brandColors.TextDark)
			pdf.SetTextColor(r, gr, b)
		}
	}

	return g.output(pdf, w)
}

// =============================================================================
// Orders Report
// =============================================================================

// OrdersReport writes an order listing as a PDF, with per-status counts
// and the revenue total of delivered orders.
func (g *PDFGenerator) OrdersReport(companyName string, orders []domain.Order, generatedAt time.Time, w io.Writer) (int64, error) {
	pdf := g.newDoc("Reporte de Pedidos", companyName, generatedAt)

	counts := make(map[domain.OrderStatus]int)
	var revenue float64
	for i := range orders {
		counts[orders[i].Status]++
		if orders[i].Status == domain.OrderDelivered {
			revenue += orders[i].Total
		}
	}

	g.addSectionHeader(pdf, "Resumen")
	pdf.Cell(0, 7, fmt.Sprintf("Pedidos totales: %d", len(orders)))
	pdf.Ln(7)
	for _, status := range domain.OrderStatuses {
		if counts[status] == 0 {
			continue
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d", orderStatusLabel(status), counts[status]))
		pdf.Ln(7)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 7, "Ingresos entregados: "+formatMoney(revenue))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Ln(12)

	g.addSectionHeader(pdf, "Detalle de Pedidos")
	widths := []float64{50, 28, 26, 26, 50}
	g.tableHeader(pdf, []string{"Cliente", "Estado", "Total", "Fecha", "Dirección"}, widths)

	for i := range orders {
		o := &orders[i]
		switch o.Status {
		case domain.OrderDelivered:
			r, gr, b := hexToRGB(brandColors.Green)
			pdf.SetTextColor(r, gr, b)
		case domain.OrderCanceled:
			r, gr, b := hexToRGB(brandColors.Red)
			pdf.SetTextColor(r, gr, b)
		}
		g.tableRow(pdf, []string{
			o.Client.Name,
			orderStatusLabel(o.Status),
			formatMoney(o.Total),
			formatBackendDate(o.OrderedAt),
			o.DeliveryAddress,
		}, widths, i%2 == 1)
		r, gr, b := hexToRGB(brandColors.TextDark)
		pdf.SetTextColor(r, gr, b)
	}

	return g.output(pdf, w)
}

// =============================================================================
// Routes Report
// =============================================================================

// RoutesReport writes the delivery routes as a PDF, with per-status counts
// and the accumulated distance of completed routes.
func (g *PDFGenerator) RoutesReport(companyName string, routes []domain.Route, generatedAt time.Time, w io.Writer) (int64, error) {
	pdf := g.newDoc("Reporte de Rutas", companyName, generatedAt)

	counts := make(map[domain.RouteStatus]int)
	var completedKm float64
	for i := range routes {
		counts[routes[i].Status]++
		if routes[i].Status == domain.RouteCompleted {
			completedKm += routes[i].TotalKm
		}
	}

	g.addSectionHeader(pdf, "Resumen")
	pdf.Cell(0, 7, fmt.Sprintf("Rutas totales: %d", len(routes)))
	pdf.Ln(7)
	for _, status := range domain.RouteStatuses {
		if counts[status] == 0 {
			continue
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d", routeStatusLabel(status), counts[status]))
		pdf.Ln(7)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 7, fmt.Sprintf("Kilómetros completados: %.1f km", completedKm))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Ln(12)

	g.addSectionHeader(pdf, "Detalle de Rutas")
	widths := []float64{48, 26, 28, 22, 28, 28}
	g.tableHeader(pdf, []string{"Repartidor", "Fecha", "Estado", "Pedidos", "Distancia", "Tiempo est."}, widths)

	for i := range routes {
		rt := &routes[i]
		switch rt.Status {
		case domain.RouteCompleted:
			r, gr, b := hexToRGB(brandColors.Green)
			pdf.SetTextColor(r, gr, b)
		case domain.RouteCanceled:
			r, gr, b := hexToRGB(brandColors.Red)
			pdf.SetTextColor(r, gr, b)
		}
		courier := "-"
		if rt.Courier != nil {
			courier = rt.Courier.DisplayName()
		}
		distance := "-"
		if rt.TotalKm > 0 {
			distance = fmt.Sprintf("%.1f km", rt.TotalKm)
		}
		estimated := "-"
		if rt.EstimatedMin > 0 {
			estimated = fmt.Sprintf("%d min", rt.EstimatedMin)
		}
		g.tableRow(pdf, []string{
			courier,
			formatBackendDate(rt.RouteDate),
			routeStatusLabel(rt.Status),
			fmt.Sprintf("%d", len(rt.Orders)),
			distance,
			estimated,
		}, widths, i%2 == 1)
		r, gr, b := hexToRGB(brandColors.TextDark)
		pdf.SetTextColor(r, gr, b)
	}

	return g.output(pdf, w)
}

func orderStatusLabel(status domain.OrderStatus) string {
	switch status {
	case domain.OrderPending:
		return "Pendiente"
	case domain.OrderProcessed:
		return "En proceso"
	case domain.OrderEnRoute:
		return "En camino"
	case domain.OrderDelivered:
		return "Entregado"
	case domain.OrderCanceled:
		return "Cancelado"
	}
	return string(status)
}

func routeStatusLabel(status domain.RouteStatus) string {
	switch status {
	case domain.RoutePlanned:
		return "Planificada"
	case domain.RouteInProgress:
		return "En curso"
	case domain.RouteCompleted:
		return "Completada"
	case domain.RouteCanceled:
		return "Cancelada"
	}
	return string(status)
}
