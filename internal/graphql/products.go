package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

const productFields = `
      id
      nombre
      sku
      descripcion
      precio
      activo`

const productsQuery = `
query Productos($page: Int, $size: Int) {
  productos(page: $page, size: $size) {
    content {` + productFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const searchProductsQuery = `
query BuscarProductosPorNombre($nombre: String!, $page: Int, $size: Int) {
  buscarProductosPorNombre(nombre: $nombre, page: $page, size: $size) {
    content {` + productFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const createProductMutation = `
mutation CrearProducto($input: CrearProductoInput!) {
  crearProducto(input: $input) {` + productFields + `
  }
}`

const updateProductMutation = `
mutation ActualizarProducto($id: ID!, $input: ActualizarProductoInput!) {
  actualizarProducto(id: $id, input: $input) {` + productFields + `
  }
}`

const deactivateProductMutation = `
mutation DesactivarProducto($id: ID!) {
  desactivarProducto(id: $id) {
    id
    activo
  }
}`

const activateProductMutation = `
mutation ActivarProducto($id: ID!) {
  activarProducto(id: $id) {
    id
    activo
  }
}`

// Products lists the catalog, paginated.
func (c *Client) Products(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Product], error) {
	var resp struct {
		Products domain.Page[domain.Product] `json:"productos"`
	}
	err := c.do(ctx, "productos", productsQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Products, nil
}

// SearchProducts searches the catalog by name, paginated.
func (c *Client) SearchProducts(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Product], error) {
	vars := pageVars(pr)
	vars["nombre"] = name
	var resp struct {
		Products domain.Page[domain.Product] `json:"buscarProductosPorNombre"`
	}
	err := c.do(ctx, "buscarProductosPorNombre", searchProductsQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Products, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	var resp struct {
		Product *domain.Product `json:"crearProducto"`
	}
	err := c.do(ctx, "crearProducto", createProductMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Product, nil
}

// UpdateProduct updates a catalog product.
func (c *Client) UpdateProduct(ctx context.Context, id string, input domain.ProductInput) (*domain.Product, error) {
	var resp struct {
		Product *domain.Product `json:"actualizarProducto"`
	}
	err := c.do(ctx, "actualizarProducto", updateProductMutation, map[string]any{"id": id, "input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Product, nil
}

// DeactivateProduct marks a product inactive.
func (c *Client) DeactivateProduct(ctx context.Context, id string) error {
	return c.do(ctx, "desactivarProducto", deactivateProductMutation, map[string]any{"id": id}, nil)
}

// ActivateProduct re-activates a product.
func (c *Client) ActivateProduct(ctx context.Context, id string) error {
	return c.do(ctx, "activarProducto", activateProductMutation, map[string]any{"id": id}, nil)
}
