package domain

// Product represents an item in the business catalog.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"nombre"`
	SKU         string  `json:"sku"`
	Description string  `json:"descripcion,omitempty"`
	Price       float64 `json:"precio"`
	Active      bool    `json:"activo"`
}

// ProductInput is the payload for crearProducto and actualizarProducto.
type ProductInput struct {
	Name        string  `json:"nombre"`
	SKU         string  `json:"sku"`
	Description string  `json:"descripcion,omitempty"`
	Price       float64 `json:"precio"`
}
