package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
)

// =============================================================================
// Mocks
// =============================================================================

type stubInventoryService struct {
	inventory     *domain.Inventory
	inventoryErr  error
	deactivated   []string
	deactivateErr error
}

func (s *stubInventoryService) Inventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	return &domain.Page[domain.Inventory]{}, nil
}

func (s *stubInventoryService) LowStockInventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	return &domain.Page[domain.Inventory]{}, nil
}

func (s *stubInventoryService) SearchInventories(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	return &domain.Page[domain.Inventory]{}, nil
}

func (s *stubInventoryService) InventoryByProduct(ctx context.Context, productID string) (*domain.Inventory, error) {
	if s.inventoryErr != nil {
		return nil, s.inventoryErr
	}
	return s.inventory, nil
}

func (s *stubInventoryService) MovementsByProduct(ctx context.Context, productID string, pr domain.PageRequest) (*domain.Page[domain.StockMovement], error) {
	return &domain.Page[domain.StockMovement]{
		Content: []domain.StockMovement{
			{ID: "m1", Type: domain.MovementIn, Quantity: 5, QuantityPrev: 10, QuantityNew: 15},
		},
	}, nil
}

func (s *stubInventoryService) AdjustInventory(ctx context.Context, input domain.AdjustInventoryInput) (*domain.Inventory, error) {
	return &domain.Inventory{}, nil
}

func (s *stubInventoryService) DeactivateInventory(ctx context.Context, productID string) error {
	s.deactivated = append(s.deactivated, productID)
	return s.deactivateErr
}

// =============================================================================
// Deactivate Tests
// =============================================================================

func TestInventoryDeactivate_Success(t *testing.T) {
	backend := &stubInventoryService{}
	h := NewInventoryHandler(backend, &mockRenderer{}, testLogger(), false)

	req := postForm(t, "/dashboard/inventory/p7/deactivate", url.Values{})
	req.SetPathValue("id", "p7")
	rec := httptest.NewRecorder()

	h.Deactivate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/inventory?deactivated=1" {
		t.Errorf("unexpected redirect: %s", loc)
	}
	if len(backend.deactivated) != 1 || backend.deactivated[0] != "p7" {
		t.Errorf("unexpected deactivate calls: %v", backend.deactivated)
	}
}

func TestInventoryDeactivate_InvalidCSRF_Rejected(t *testing.T) {
	backend := &stubInventoryService{}
	h := NewInventoryHandler(backend, &mockRenderer{}, testLogger(), false)

	form := url.Values{}
	form.Set("csrf_token", "forged")
	req := httptest.NewRequest("POST", "/dashboard/inventory/p7/deactivate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: "different"})
	req.SetPathValue("id", "p7")
	rec := httptest.NewRecorder()

	h.Deactivate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(backend.deactivated) != 0 {
		t.Error("backend must not be called with an invalid CSRF token")
	}
}

func TestInventoryDeactivate_BackendError(t *testing.T) {
	backend := &stubInventoryService{
		deactivateErr: domain.NotFound("graphql.DeactivateInventory", "inventario", "p7"),
	}
	h := NewInventoryHandler(backend, &mockRenderer{}, testLogger(), false)

	req := postForm(t, "/dashboard/inventory/p7/deactivate", url.Values{})
	req.SetPathValue("id", "p7")
	rec := httptest.NewRecorder()

	h.Deactivate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// Movements Tests
// =============================================================================

func TestMovements_IncludesStockRecord(t *testing.T) {
	backend := &stubInventoryService{
		inventory: &domain.Inventory{
			ID:       "i1",
			Product:  domain.Product{ID: "p7", Name: "Harina", SKU: "HAR-01"},
			Quantity: 42,
			MinStock: 10,
			Active:   true,
		},
	}
	renderer := &mockRenderer{}
	h := NewInventoryHandler(backend, renderer, testLogger(), false)

	req := httptest.NewRequest("GET", "/dashboard/inventory/p7/movements", nil)
	req.SetPathValue("id", "p7")
	rec := httptest.NewRecorder()

	h.Movements(rec, req)

	if renderer.lastName != "inventory/movements" {
		t.Fatalf("unexpected template: %q", renderer.lastName)
	}
	data, ok := renderer.lastData.(MovementsPageData)
	if !ok {
		t.Fatalf("unexpected data type %T", renderer.lastData)
	}
	if data.Inventory == nil || data.Inventory.Quantity != 42 {
		t.Errorf("expected stock record in page data, got %+v", data.Inventory)
	}
	if len(data.Movements.Content) != 1 {
		t.Errorf("expected one movement, got %d", len(data.Movements.Content))
	}
}

func TestMovements_MissingStockRecord_StillRenders(t *testing.T) {
	backend := &stubInventoryService{
		inventoryErr: domain.NotFound("graphql.InventoryByProduct", "inventario", "p7"),
	}
	renderer := &mockRenderer{}
	h := NewInventoryHandler(backend, renderer, testLogger(), false)

	req := httptest.NewRequest("GET", "/dashboard/inventory/p7/movements", nil)
	req.SetPathValue("id", "p7")
	rec := httptest.NewRecorder()

	h.Movements(rec, req)

	data := renderer.lastData.(MovementsPageData)
	if data.Inventory != nil {
		t.Errorf("expected nil stock record, got %+v", data.Inventory)
	}
	if len(data.Movements.Content) != 1 {
		t.Error("movement history must render without the stock header")
	}
}
