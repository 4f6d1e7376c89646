package domain

// OrderStatus is the lifecycle state of an order, owned by the backend.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDIENTE"
	OrderProcessed OrderStatus = "EN_PROCESO"
	OrderEnRoute   OrderStatus = "EN_CAMINO"
	OrderDelivered OrderStatus = "ENTREGADO"
	OrderCanceled  OrderStatus = "CANCELADO"
)

// OrderStatuses lists the states in lifecycle order, for filter dropdowns.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderProcessed, OrderEnRoute, OrderDelivered, OrderCanceled,
}

// Order represents a customer order with its line items.
type Order struct {
	ID              string      `json:"id"`
	Client          Client      `json:"cliente"`
	Status          OrderStatus `json:"estado"`
	Total           float64     `json:"total"`
	DeliveryAddress string      `json:"direccionEntrega"`
	Notes           string      `json:"observaciones,omitempty"`
	DeliveredAt     string      `json:"fechaEntrega,omitempty"`
	Active          bool        `json:"activo"`
	OrderedAt       string      `json:"fechaPedido"`
	UpdatedAt       string      `json:"fechaActualizacion,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is a single product line on an order. Subtotal is computed
// server-side; it is display data here, never recalculated locally.
type OrderItem struct {
	ID        string  `json:"id"`
	Product   Product `json:"producto"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precioUnitario"`
	Subtotal  float64 `json:"subtotal"`
}

// CreateOrderInput is the payload for crearPedido.
type CreateOrderInput struct {
	ClientID        string           `json:"clienteId"`
	DeliveryAddress string           `json:"direccionEntrega"`
	Notes           string           `json:"observaciones,omitempty"`
	Items           []OrderItemInput `json:"items"`
}

// OrderItemInput is one requested product line.
type OrderItemInput struct {
	ProductID string `json:"productoId"`
	Quantity  int    `json:"cantidad"`
}
