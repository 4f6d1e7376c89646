package domain

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "ENTRADA"
	MovementOut MovementType = "SALIDA"
)

// Inventory is the stock record for a product.
type Inventory struct {
	ID        string  `json:"id"`
	Product   Product `json:"producto"`
	Quantity  int     `json:"cantidad"`
	Location  string  `json:"ubicacion,omitempty"`
	MinStock  int     `json:"stockMinimo"`
	Active    bool    `json:"activo"`
	CreatedAt string  `json:"fechaCreacion,omitempty"`
	UpdatedAt string  `json:"fechaUltimaActualizacion,omitempty"`
}

// LowStock reports whether the quantity has fallen to or below the minimum.
func (i *Inventory) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// StockMovement is one entry in a product's movement history.
type StockMovement struct {
	ID           string       `json:"id"`
	Product      Product      `json:"producto"`
	Type         MovementType `json:"tipo"`
	Quantity     int          `json:"cantidad"`
	Reason       string       `json:"motivo,omitempty"`
	MovedAt      string       `json:"fechaMovimiento"`
	QuantityPrev int          `json:"cantidadAnterior"`
	QuantityNew  int          `json:"cantidadNueva"`
}

// AdjustInventoryInput is the payload for ajustarInventario. Quantity is
// signed: positive values add stock, negative values remove it.
type AdjustInventoryInput struct {
	ProductID string `json:"productoId"`
	Quantity  int    `json:"cantidad"`
	Reason    string `json:"motivo,omitempty"`
	Location  string `json:"ubicacion,omitempty"`
	MinStock  *int   `json:"stockMinimo,omitempty"`
}
