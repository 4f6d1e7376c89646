package domain

// Client represents a delivery customer of the business.
type Client struct {
	ID               string  `json:"id"`
	Name             string  `json:"nombre"`
	Email            string  `json:"email"`
	Phone            string  `json:"telefono"`
	Address          string  `json:"direccion"`
	Active           bool    `json:"activo"`
	CreatedAt        string  `json:"fechaCreacion,omitempty"`
	Latitude         float64 `json:"latitudCliente,omitempty"`
	Longitude        float64 `json:"longitudCliente,omitempty"`
	AddressReference string  `json:"referenciaDireccion,omitempty"`
}

// HasLocation reports whether the client has geocoded coordinates.
func (c *Client) HasLocation() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// ClientInput is the payload for crearCliente and actualizarCliente.
type ClientInput struct {
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
}

// ClientLocationInput is the payload for actualizarUbicacionCliente.
type ClientLocationInput struct {
	Latitude         float64 `json:"latitudCliente"`
	Longitude        float64 `json:"longitudCliente"`
	AddressReference string  `json:"referenciaDireccion,omitempty"`
}

// CompanyLocationInput is the payload for actualizarUbicacionEmpresa,
// applied to the admin's own user record.
type CompanyLocationInput struct {
	CompanyName    string  `json:"nombreEmpresa,omitempty"`
	CompanyAddress string  `json:"direccionEmpresa,omitempty"`
	Latitude       float64 `json:"latitudEmpresa"`
	Longitude      float64 `json:"longitudEmpresa"`
}
