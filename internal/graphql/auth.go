package graphql

import (
	"context"

	"github.com/distria/distria/internal/domain"
)

const loginMutation = `
mutation Login($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    token
    tipo
    userId
    email
    nombreCompleto
    rol
  }
}`

const createUserMutation = `
mutation CrearUsuario($input: CrearUsuarioInput!) {
  crearUsuario(input: $input) {
    id
    nombreCompleto
    email
    rol
    telefono
    activo
    fechaCreacion
  }
}`

const meQuery = `
query Me {
  me {
    id
    nombreCompleto
    email
    rol
    telefono
    activo
    nombreEmpresa
    direccionEmpresa
    latitudEmpresa
    longitudEmpresa
    ultimoAcceso
  }
}`

// Login authenticates against the backend and returns the auth result
// verbatim. No token is attached to this operation (none exists yet).
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var resp struct {
		Login *domain.AuthResult `json:"login"`
	}
	err := c.do(ctx, "login", loginMutation, map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Login == nil {
		return nil, domain.Unauthorized("graphql.login", "invalid credentials")
	}
	return resp.Login, nil
}

// CreateUser registers a new user account.
func (c *Client) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"crearUsuario"`
	}
	err := c.do(ctx, "crearUsuario", createUserMutation, map[string]any{"input": input}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Me fetches the authoritative record of the current session's user. A nil
// record with no error means the backend no longer recognizes the session;
// callers must treat that as unauthenticated.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var resp struct {
		Me *domain.User `json:"me"`
	}
	if err := c.do(ctx, "me", meQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Me, nil
}
