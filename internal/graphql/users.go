package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

const usersByRoleQuery = `
query UsuariosPorRol($rol: Rol!) {
  usuariosPorRol(rol: $rol) {
    id
    nombreCompleto
    email
    rol
    activo
  }
}`

const activeUsersByRoleQuery = `
query UsuariosActivosPorRol($rol: Rol!) {
  usuariosActivosPorRol(rol: $rol) {
    id
    nombreCompleto
    email
    rol
    activo
  }
}`

const updateCompanyLocationMutation = `
mutation ActualizarUbicacionEmpresa($id: ID!, $input: ActualizarUbicacionEmpresaInput!) {
  actualizarUbicacionEmpresa(id: $id, input: $input) {
    id
    nombreCompleto
    email
    direccionEmpresa
    latitudEmpresa
    longitudEmpresa
    nombreEmpresa
    fechaActualizacion
  }
}`

// UsersByRole lists every user holding a role, inactive ones included. The
// route filter uses it so routes of former couriers stay reachable.
func (c *Client) UsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var resp struct {
		Users []domain.User `json:"usuariosPorRol"`
	}
	err := c.do(ctx, "usuariosPorRol", usersByRoleQuery, map[string]any{"rol": role}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ActiveUsersByRole lists only active users holding a role.
func (c *Client) ActiveUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var resp struct {
		Users []domain.User `json:"usuariosActivosPorRol"`
	}
	err := c.do(ctx, "usuariosActivosPorRol", activeUsersByRoleQuery, map[string]any{"rol": role}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UpdateCompanyLocation updates the warehouse location on the admin's record.
func (c *Client) UpdateCompanyLocation(ctx context.Context, userID string, input domain.CompanyLocationInput) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"actualizarUbicacionEmpresa"`
	}
	err := c.do(ctx, "actualizarUbicacionEmpresa", updateCompanyLocationMutation, map[string]any{"id": userID, "input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}
