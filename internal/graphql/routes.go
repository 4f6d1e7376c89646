package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

const routeFields = `
      id
      repartidor {
        id
        nombreCompleto
        email
      }
      estado
      fechaRuta
      distanciaTotalKm
      tiempoEstimadoMin
      activo
      fechaCreacion
      fechaActualizacion
      pedidos {
        id
        estado
        total
        direccionEntrega
        cliente {
          id
          nombre
          telefono
          direccion
          latitudCliente
          longitudCliente
          referenciaDireccion
        }
      }`

const routesQuery = `
query Rutas($page: Int, $size: Int) {
  rutas(page: $page, size: $size) {
    content {` + routeFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const activeRoutesQuery = `
query RutasActivas($page: Int, $size: Int) {
  rutasActivas(page: $page, size: $size) {
    content {` + routeFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const routesByCourierQuery = `
query RutasPorRepartidor($repartidorId: ID!, $page: Int, $size: Int) {
  rutasPorRepartidor(repartidorId: $repartidorId, page: $page, size: $size) {
    content {` + routeFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const routesByStatusQuery = `
query RutasPorEstado($estado: EstadoRuta!, $page: Int, $size: Int) {
  rutasPorEstado(estado: $estado, page: $page, size: $size) {
    content {` + routeFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const routeQuery = `
query Ruta($id: ID!) {
  ruta(id: $id) {` + routeFields + `
  }
}`

const createRouteMutation = `
mutation CrearRuta($input: CrearRutaInput!) {
  crearRuta(input: $input) {` + routeFields + `
  }
}`

const assignOrdersMutation = `
mutation AsignarPedidosARuta($input: AsignarPedidosRutaInput!) {
  asignarPedidosARuta(input: $input) {` + routeFields + `
  }
}`

const removeOrderMutation = `
mutation RemoverPedidoDeRuta($rutaId: ID!, $pedidoId: ID!) {
  removerPedidoDeRuta(rutaId: $rutaId, pedidoId: $pedidoId) {` + routeFields + `
  }
}`

const updateRouteStatusMutation = `
mutation ActualizarEstadoRuta($rutaId: ID!, $estado: EstadoRuta!) {
  actualizarEstadoRuta(rutaId: $rutaId, estado: $estado) {
    id
    estado
  }
}`

const deactivateRouteMutation = `
mutation DesactivarRuta($rutaId: ID!) {
  desactivarRuta(rutaId: $rutaId) {
    id
    activo
  }
}`

const deleteRouteMutation = `
mutation EliminarRuta($rutaId: ID!) {
  eliminarRuta(rutaId: $rutaId)
}`

// Routes lists delivery routes, paginated.
func (c *Client) Routes(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Route], error) {
	var resp struct {
		Routes domain.Page[domain.Route] `json:"rutas"`
	}
	err := c.do(ctx, "rutas", routesQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Routes, nil
}

// ActiveRoutes lists only active routes, paginated.
func (c *Client) ActiveRoutes(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Route], error) {
	var resp struct {
		Routes domain.Page[domain.Route] `json:"rutasActivas"`
	}
	err := c.do(ctx, "rutasActivas", activeRoutesQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Routes, nil
}

// RoutesByCourier lists routes assigned to one courier, paginated.
func (c *Client) RoutesByCourier(ctx context.Context, courierID string, pr domain.PageRequest) (*domain.Page[domain.Route], error) {
	vars := pageVars(pr)
	vars["repartidorId"] = courierID
	var resp struct {
		Routes domain.Page[domain.Route] `json:"rutasPorRepartidor"`
	}
	err := c.do(ctx, "rutasPorRepartidor", routesByCourierQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Routes, nil
}

// RoutesByStatus lists routes in a given state, paginated.
func (c *Client) RoutesByStatus(ctx context.Context, status domain.RouteStatus, pr domain.PageRequest) (*domain.Page[domain.Route], error) {
	vars := pageVars(pr)
	vars["estado"] = status
	var resp struct {
		Routes domain.Page[domain.Route] `json:"rutasPorEstado"`
	}
	err := c.do(ctx, "rutasPorEstado", routesByStatusQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Routes, nil
}

// Route fetches one route with its orders.
func (c *Client) Route(ctx context.Context, id string) (*domain.Route, error) {
	var resp struct {
		Route *domain.Route `json:"ruta"`
	}
	err := c.do(ctx, "ruta", routeQuery, map[string]any{"id": id}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Route == nil {
		return nil, domain.NotFound("graphql.ruta", "route", id)
	}
	return resp.Route, nil
}

// CreateRoute creates a route for a courier on a date, optionally seeding it
// with orders.
func (c *Client) CreateRoute(ctx context.Context, input domain.CreateRouteInput) (*domain.Route, error) {
	var resp struct {
		Route *domain.Route `json:"crearRuta"`
	}
	err := c.do(ctx, "crearRuta", createRouteMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Route, nil
}

// AssignOrders adds orders to an existing route.
func (c *Client) AssignOrders(ctx context.Context, input domain.AssignOrdersInput) (*domain.Route, error) {
	var resp struct {
		Route *domain.Route `json:"asignarPedidosARuta"`
	}
	err := c.do(ctx, "asignarPedidosARuta", assignOrdersMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Route, nil
}

// RemoveOrder takes one order off a route.
func (c *Client) RemoveOrder(ctx context.Context, routeID, orderID string) (*domain.Route, error) {
	var resp struct {
		Route *domain.Route `json:"removerPedidoDeRuta"`
	}
	err := c.do(ctx, "removerPedidoDeRuta", removeOrderMutation, map[string]any{"rutaId": routeID, "pedidoId": orderID}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Route, nil
}

// UpdateRouteStatus transitions a route to a new state.
func (c *Client) UpdateRouteStatus(ctx context.Context, routeID string, status domain.RouteStatus) error {
	return c.do(ctx, "actualizarEstadoRuta", updateRouteStatusMutation, map[string]any{"rutaId": routeID, "estado": status}, nil)
}

// DeactivateRoute marks a route inactive.
func (c *Client) DeactivateRoute(ctx context.Context, routeID string) error {
	return c.do(ctx, "desactivarRuta", deactivateRouteMutation, map[string]any{"rutaId": routeID}, nil)
}

// DeleteRoute permanently removes a route.
func (c *Client) DeleteRoute(ctx context.Context, routeID string) error {
	return c.do(ctx, "eliminarRuta", deleteRouteMutation, map[string]any{"rutaId": routeID}, nil)
}
