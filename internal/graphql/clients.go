package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

// clientFields is the selection set shared by all client operations.
const clientFields = `
      id
      nombre
      email
      telefono
      direccion
      activo
      fechaCreacion
      latitudCliente
      longitudCliente
      referenciaDireccion`

const clientsQuery = `
query Clientes($page: Int, $size: Int) {
  clientes(page: $page, size: $size) {
    content {` + clientFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const activeClientsQuery = `
query ClientesActivos($page: Int, $size: Int) {
  clientesActivos(page: $page, size: $size) {
    content {` + clientFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const searchClientsQuery = `
query BuscarClientesPorNombre($nombre: String!, $page: Int, $size: Int) {
  buscarClientesPorNombre(nombre: $nombre, page: $page, size: $size) {
    content {` + clientFields + `
    }
    totalElements
    totalPages
    page
    size
  }
}`

const createClientMutation = `
mutation CrearCliente($input: CrearClienteInput!) {
  crearCliente(input: $input) {` + clientFields + `
  }
}`

const updateClientMutation = `
mutation ActualizarCliente($id: ID!, $input: ActualizarClienteInput!) {
  actualizarCliente(id: $id, input: $input) {` + clientFields + `
  }
}`

const deactivateClientMutation = `
mutation DesactivarCliente($id: ID!) {
  desactivarCliente(id: $id) {
    id
    activo
  }
}`

const activateClientMutation = `
mutation ActivarCliente($id: ID!) {
  activarCliente(id: $id) {
    id
    activo
  }
}`

const updateClientLocationMutation = `
mutation ActualizarUbicacionCliente($id: ID!, $input: ActualizarUbicacionClienteInput!) {
  actualizarUbicacionCliente(id: $id, input: $input) {
    id
    nombre
    direccion
    latitudCliente
    longitudCliente
    referenciaDireccion
  }
}`

// Clients lists clients, paginated.
func (c *Client) Clients(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Client], error) {
	var resp struct {
		Clients domain.Page[domain.Client] `json:"clientes"`
	}
	err := c.do(ctx, "clientes", clientsQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Clients, nil
}

// ActiveClients lists only active clients, paginated.
func (c *Client) ActiveClients(ctx context.Context, pr domain.PageRequest) (*domain.Page[domain.Client], error) {
	var resp struct {
		Clients domain.Page[domain.Client] `json:"clientesActivos"`
	}
	err := c.do(ctx, "clientesActivos", activeClientsQuery, pageVars(pr), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Clients, nil
}

// SearchClients searches clients by name, paginated.
func (c *Client) SearchClients(ctx context.Context, name string, pr domain.PageRequest) (*domain.Page[domain.Client], error) {
	vars := pageVars(pr)
	vars["nombre"] = name
	var resp struct {
		Clients domain.Page[domain.Client] `json:"buscarClientesPorNombre"`
	}
	err := c.do(ctx, "buscarClientesPorNombre", searchClientsQuery, vars, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Clients, nil
}

// CreateClient creates a client.
func (c *Client) CreateClient(ctx context.Context, input domain.ClientInput) (*domain.Client, error) {
	var resp struct {
		Client *domain.Client `json:"crearCliente"`
	}
	err := c.do(ctx, "crearCliente", createClientMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Client, nil
}

// UpdateClient updates a client.
func (c *Client) UpdateClient(ctx context.Context, id string, input domain.ClientInput) (*domain.Client, error) {
	var resp struct {
		Client *domain.Client `json:"actualizarCliente"`
	}
	err := c.do(ctx, "actualizarCliente", updateClientMutation, map[string]any{"id": id, "input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Client, nil
}

// DeactivateClient marks a client inactive.
func (c *Client) DeactivateClient(ctx context.Context, id string) error {
	return c.do(ctx, "desactivarCliente", deactivateClientMutation, map[string]any{"id": id}, nil)
}

// ActivateClient re-activates a client.
func (c *Client) ActivateClient(ctx context.Context, id string) error {
	return c.do(ctx, "activarCliente", activateClientMutation, map[string]any{"id": id}, nil)
}

// UpdateClientLocation updates a client's delivery coordinates.
func (c *Client) UpdateClientLocation(ctx context.Context, id string, input domain.ClientLocationInput) (*domain.Client, error) {
	var resp struct {
		Client *domain.Client `json:"actualizarUbicacionCliente"`
	}
	err := c.do(ctx, "actualizarUbicacionCliente", updateClientLocationMutation, map[string]any{"id": id, "input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Client, nil
}

// pageVars builds the page/size variable map every paginated query shares.
func pageVars(pr domain.PageRequest) map[string]any {
	pr = pr.Normalize()
	return map[string]any{"page": pr.Page, "size": pr.Size}
}
