package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

const orderFields = `
      id
      cliente {
        id
        nombre
        email
        telefono
        direccion
      }
      estado
      total
      direccionEntrega
      observaciones
      fechaEntrega
      activo
      fechaPedido
      fechaActualizacion
      items {
        id
        producto {
          id
          nombre
          sku
          precio
        }
        cantidad
        precioUnitario
        subtotal
      }`

const ordersQuery = `
query Pedidos($page: Int, $size: Int) {
  pedidos(page: $page, size: $size) {
    content {` + orderFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const activeOrdersQuery = `
query PedidosActivos($page: Int, $size: Int) {
  pedidosActivos(page: $page, size: $size) {
    content {` + orderFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const ordersByStatusQuery = `
query PedidosPorEstado($estado: EstadoPedido!, $page: Int, $size: Int) {
  pedidosPorEstado(estado: $estado, page: $page, size: $size) {
    content {` + orderFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const ordersByClientQuery = `
query PedidosPorCliente($clienteId: ID!, $page: Int, $size: Int) {
  pedidosPorCliente(clienteId: $clienteId, page: $page, size: $size) {
    content {` + orderFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const orderQuery = `
query Pedido($id: ID!) {
  pedido(id: $id) {` + orderFields + `
  }
}`

const createOrderMutation = `
mutation CrearPedido($input: CrearPedidoInput!) {
  crearPedido(input: $input) {` + orderFields + `
  }
}`

const updateOrderStatusMutation = `
mutation ActualizarEstadoPedido($id: ID!, $estado: EstadoPedido!) {
  actualizarEstadoPedido(id: $id, estado: $estado) {` + orderFields + `
  }
}`

const cancelOrderMutation = `
mutation CancelarPedido($id: ID!, $motivo: String) {
  cancelarPedido(id: $id, motivo: $motivo) {
    id
    estado
  }
}`

const deactivateOrderMutation = `
mutation DesactivarPedido($id: ID!) {
  desactivarPedido(id: $id) {
    id
    activo
  }
}`

// Orders lists orders, paginated.
func (c *Client) Orders(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Order], error) {
	var resp struct {
		Orders domain.Page[domain.Order] `json:"pedidos"`
	}
	err := c.do(ctx, "pedidos", ordersQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Orders, nil
}

// ActiveOrders lists only active orders, paginated.
func (c *Client) ActiveOrders(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Order], error) {
	var resp struct {
		Orders domain.Page[domain.Order] `json:"pedidosActivos"`
	}
	err := c.do(ctx, "pedidosActivos", activeOrdersQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Orders, nil
}

// OrdersByStatus lists orders in a given state, paginated.
func (c *Client) OrdersByStatus(ctx context.Context, status domain.OrderStatus, pr domain.PageRequest) (*domain.Page[domain.Order], error) {
	vars := pageVars(pr)
	vars["estado"] = status
	var resp struct {
		Orders domain.Page[domain.Order] `json:"pedidosPorEstado"`
	}
	err := c.do(ctx, "pedidosPorEstado", ordersByStatusQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Orders, nil
}

// OrdersByClient lists one client's orders, paginated.
func (c *Client) OrdersByClient(ctx context.Context, clientID string, pr domain.PageRequest) (*domain.Page[domain.Order], error) {
	vars := pageVars(pr)
	vars["clienteId"] = clientID
	var resp struct {
		Orders domain.Page[domain.Order] `json:"pedidosPorCliente"`
	}
	err := c.do(ctx, "pedidosPorCliente", ordersByClientQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Orders, nil
}

// Order fetches one order with its items.
func (c *Client) Order(ctx context.Context, id string) (*domain.Order, error) {
	var resp struct {
		Order *domain.Order `json:"pedido"`
	}
	err := c.do(ctx, "pedido", orderQuery, map[string]any{"id": id}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, domain.NotFound("graphql.pedido", "order", id)
	}
	return resp.Order, nil
}

// CreateOrder creates an order. The backend computes the total and subtotals.
func (c *Client) CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Order, error) {
	var resp struct {
		Order *domain.Order `json:"crearPedido"`
	}
	err := c.do(ctx, "crearPedido", createOrderMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// UpdateOrderStatus transitions an order to a new state.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var resp struct {
		Order *domain.Order `json:"actualizarEstadoPedido"`
	}
	err := c.do(ctx, "actualizarEstadoPedido", updateOrderStatusMutation, map[string]any{"id": id, "estado": status}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// CancelOrder cancels an order with an optional reason.
func (c *Client) CancelOrder(ctx context.Context, id, reason string) error {
	vars := map[string]any{"id": id}
	if reason != "" {
		vars["motivo"] = reason
	}
	return c.do(ctx, "cancelarPedido", cancelOrderMutation, vars, nil)
}

// DeactivateOrder marks an order inactive.
func (c *Client) DeactivateOrder(ctx context.Context, id string) error {
	return c.do(ctx, "desactivarPedido", deactivateOrderMutation, map[string]any{"id": id}, nil)
}
