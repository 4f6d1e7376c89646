package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

const inventoryFields = `
      id
      producto {
        id
        nombre
        sku
        precio
      }
      cantidad
      ubicacion
      stockMinimo
      activo
      fechaCreacion
      fechaUltimaActualizacion`

const inventoriesQuery = `
query Inventarios($page: Int, $size: Int) {
  inventarios(page: $page, size: $size) {
    content {` + inventoryFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const activeInventoriesQuery = `
query InventariosActivos($page: Int, $size: Int) {
  inventariosActivos(page: $page, size: $size) {
    content {` + inventoryFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const lowStockQuery = `
query InventariosStockBajo($page: Int, $size: Int) {
  inventariosStockBajo(page: $page, size: $size) {
    content {` + inventoryFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const searchInventoriesQuery = `
query BuscarInventariosPorNombre($nombre: String!, $page: Int, $size: Int) {
  buscarInventariosPorNombre(nombre: $nombre, page: $page, size: $size) {
    content {` + inventoryFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const inventoryByProductQuery = `
query InventarioPorProducto($productoId: ID!) {
  inventarioPorProducto(productoId: $productoId) {` + inventoryFields + `
  }
}`

const movementsByProductQuery = `
query MovimientosPorProducto($productoId: ID!, $page: Int, $size: Int) {
  movimientosPorProducto(productoId: $productoId, page: $page, size: $size) {
    content {
      id
      producto {
        id
        nombre
        sku
      }
      tipo
      cantidad
      motivo
      fechaMovimiento
      cantidadAnterior
      cantidadNueva
    }
    totalElements
    totalPages
    page
    size
  }
}`

const adjustInventoryMutation = `
mutation AjustarInventario($input: AjustarInventarioInput!) {
  ajustarInventario(input: $input) {` + inventoryFields + `
  }
}`

const deactivateInventoryMutation = `
mutation DesactivarInventario($productoId: ID!) {
  desactivarInventario(productoId: $productoId) {
    id
    activo
  }
}`

// Inventories lists stock records, paginated.
func (c *Client) Inventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	var resp struct {
		Inventories domain.Page[domain.Inventory] `json:"inventarios"`
	}
	err := c.do(ctx, "inventarios", inventoriesQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Inventories, nil
}

// ActiveInventories lists only active stock records, paginated.
func (c *Client) ActiveInventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	var resp struct {
		Inventories domain.Page[domain.Inventory] `json:"inventariosActivos"`
	}
	err := c.do(ctx, "inventariosActivos", activeInventoriesQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Inventories, nil
}

// LowStockInventories lists records at or below their minimum stock.
func (c *Client) LowStockInventories(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	var resp struct {
		Inventories domain.Page[domain.Inventory] `json:"inventariosStockBajo"`
	}
	err := c.do(ctx, "inventariosStockBajo", lowStockQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Inventories, nil
}

// SearchInventories searches stock records by product name, paginated.
func (c *Client) SearchInventories(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Inventory], error) {
	vars := pageVars(pr)
	vars["nombre"] = name
	var resp struct {
		Inventories domain.Page[domain.Inventory] `json:"buscarInventariosPorNombre"`
	}
	err := c.do(ctx, "buscarInventariosPorNombre", searchInventoriesQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Inventories, nil
}

// InventoryByProduct fetches the stock record for one product.
func (c *Client) InventoryByProduct(ctx context.Context, productID string) (*domain.Inventory, error) {
	var resp struct {
		Inventory *domain.Inventory `json:"inventarioPorProducto"`
	}
	err := c.do(ctx, "inventarioPorProducto", inventoryByProductQuery, map[string]any{"productoId": productID}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Inventory, nil
}

// MovementsByProduct fetches a product's stock movement history, paginated.
func (c *Client) MovementsByProduct(ctx context.Context, productID string, pr domain.PageRequest) (*domain.Page[domain.StockMovement], error) {
	vars := pageVars(pr)
	vars["productoId"] = productID
	var resp struct {
		Movements domain.Page[domain.StockMovement] `json:"movimientosPorProducto"`
	}
	err := c.do(ctx, "movimientosPorProducto", movementsByProductQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Movements, nil
}

// AdjustInventory applies a signed stock adjustment. The backend records the
// movement and recomputes the quantity; the result is the updated record.
func (c *Client) AdjustInventory(ctx context.Context, input domain.AdjustInventoryInput) (*domain.Inventory, error) {
	var resp struct {
		Inventory *domain.Inventory `json:"ajustarInventario"`
	}
	err := c.do(ctx, "ajustarInventario", adjustInventoryMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Inventory, nil
}

// DeactivateInventory marks a product's stock record inactive.
func (c *Client) DeactivateInventory(ctx context.Context, productID string) error {
	return c.do(ctx, "desactivarInventario", deactivateInventoryMutation, map[string]any{"productoId": productID}, nil)
}
