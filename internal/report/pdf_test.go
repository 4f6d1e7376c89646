package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/distria/distria/internal/domain"
)

func sampleInventories() []domain.Inventory {
	return []domain.Inventory{
		{
			ID:       "i1",
			Product:  domain.Product{ID: "p1", Name: "Agua 2L", SKU: "AGU-2L", Price: 12.5},
			Quantity: 48,
			MinStock: 10,
			Location: "Almacén central",
			Active:   true,
		},
		{
			ID:       "i2",
			Product:  domain.Product{ID: "p2", Name: "Harina 1kg", SKU: "HAR-1K", Price: 8},
			Quantity: 3,
			MinStock: 15,
			Active:   true,
		},
	}
}

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:              "o1",
			Client:          domain.Client{ID: "c1", Name: "Tienda Norte"},
			Status:          domain.OrderDelivered,
			Total:           250.75,
			DeliveryAddress: "Av. Principal 123",
			OrderedAt:       "2026-08-20T10:00:00",
		},
		{
			ID:              "o2",
			Client:          domain.Client{ID: "c2", Name: "Mercado Sur"},
			Status:          domain.OrderPending,
			Total:           99.9,
			DeliveryAddress: "Calle 7 #45",
			OrderedAt:       "2026-08-28T15:30:00",
		},
	}
}

func TestInventoryReport_ProducesPDF(t *testing.T) {
	g := NewPDFGenerator()

	var buf bytes.Buffer
	n, err := g.InventoryReport("DistrIA", sampleInventories(), time.Now(), &buf)
	if err != nil {
		t.Fatalf("InventoryReport failed: %v", err)
	}
	if n == 0 || buf.Len() == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header: %q", buf.Bytes()[:8])
	}
	if int64(buf.Len()) != n {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}
}

func TestInventoryReport_EmptyData(t *testing.T) {
	g := NewPDFGenerator()

	var buf bytes.Buffer
	if _, err := g.InventoryReport("DistrIA", nil, time.Now(), &buf); err != nil {
		t.Fatalf("empty inventory report failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("empty report should still be a valid PDF")
	}
}

func TestOrdersReport_ProducesPDF(t *testing.T) {
	g := NewPDFGenerator()

	var buf bytes.Buffer
	n, err := g.OrdersReport("DistrIA", sampleOrders(), time.Now(), &buf)
	if err != nil {
		t.Fatalf("OrdersReport failed: %v", err)
	}
	if n == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with the PDF header")
	}
}

func TestRoutesReport_ProducesPDF(t *testing.T) {
	g := NewPDFGenerator()

	routes := []domain.Route{
		{
			ID:        "r1",
			Courier:   &domain.User{ID: "u2", FullName: "Luis Mamani", Role: domain.RoleCourier},
			Status:    domain.RouteCompleted,
			RouteDate: "2026-08-25",
			TotalKm:   14.2,
			Orders:    sampleOrders(),
		},
		{
			ID:        "r2",
			Status:    domain.RoutePlanned,
			RouteDate: "2026-09-02",
		},
	}

	var buf bytes.Buffer
	n, err := g.RoutesReport("DistrIA", routes, time.Now(), &buf)
	if err != nil {
		t.Fatalf("RoutesReport failed: %v", err)
	}
	if n == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with the PDF header")
	}
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#1E3A5F")
	if r != 0x1E || g != 0x3A || b != 0x5F {
		t.Errorf("hexToRGB(#1E3A5F) = %d,%d,%d", r, g, b)
	}

	// Malformed input falls back to black rather than panicking.
	r, g, b = hexToRGB("oops")
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("expected black fallback, got %d,%d,%d", r, g, b)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := formatMoney(1234.5); got != "Bs 1234.50" {
		t.Errorf("formatMoney(1234.5) = %q", got)
	}
}
