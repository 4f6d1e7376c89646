// Package domain contains core business types shared across the application.
//
// This file defines the user and session identity types. The backend GraphQL
// API is the authority on users; these are client-side representations of the
// records it returns.
package domain

// Role is the closed set of user roles recognized by the backend.
type Role string

const (
	// RoleAdmin can manage products, clients, inventory, orders, and routes.
	RoleAdmin Role = "ADMIN"

	// RoleCourier sees only the routes and orders assigned to them.
	// The backend calls this role REPARTIDOR.
	RoleCourier Role = "REPARTIDOR"
)

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCourier
}

// User represents a user record as returned by the backend.
//
// A User may be provisional (derived from decoding the bearer token locally,
// see session.ProvisionalIdentity) or verified (returned by the backend's me
// query). Protected views should only trust verified records.
type User struct {
	ID         string `json:"id"`
	FullName   string `json:"nombreCompleto"`
	Email      string `json:"email"`
	Role       Role   `json:"rol"`
	Phone      string `json:"telefono,omitempty"`
	Active     bool   `json:"activo"`
	CreatedAt  string `json:"fechaCreacion,omitempty"`
	LastAccess string `json:"ultimoAcceso,omitempty"`

	// Company location fields, present on the admin's own record.
	CompanyName    string  `json:"nombreEmpresa,omitempty"`
	CompanyAddress string  `json:"direccionEmpresa,omitempty"`
	CompanyLat     float64 `json:"latitudEmpresa,omitempty"`
	CompanyLng     float64 `json:"longitudEmpresa,omitempty"`
}

// DisplayName returns the user's full name or email if the name is empty.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthResult is the backend's login/signup response.
//
// The token is an opaque bearer credential; TokenType is informational
// (always "Bearer" in practice).
type AuthResult struct {
	Token     string `json:"token"`
	TokenType string `json:"tipo"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FullName  string `json:"nombreCompleto"`
	Role      Role   `json:"rol"`
}

// CreateUserInput is the payload for the crearUsuario mutation.
type CreateUserInput struct {
	FullName string `json:"nombreCompleto"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"telefono,omitempty"`
	Role     Role   `json:"rol"`
}
