package domain

// RouteStatus is the lifecycle state of a delivery route.
type RouteStatus string

const (
	RoutePlanned    RouteStatus = "PLANIFICADA"
	RouteInProgress RouteStatus = "EN_CURSO"
	RouteCompleted  RouteStatus = "COMPLETADA"
	RouteCanceled   RouteStatus = "CANCELADA"
)

// RouteStatuses lists the states in lifecycle order, for filter dropdowns.
var RouteStatuses = []RouteStatus{
	RoutePlanned, RouteInProgress, RouteCompleted, RouteCanceled,
}

// Route is a delivery route assigned to a courier, carrying zero or more
// orders. Distance and time estimates are computed by the backend.
type Route struct {
	ID            string      `json:"id"`
	Courier       *User       `json:"repartidor,omitempty"`
	Status        RouteStatus `json:"estado"`
	RouteDate     string      `json:"fechaRuta"`
	TotalKm       float64     `json:"distanciaTotalKm,omitempty"`
	EstimatedMin  int         `json:"tiempoEstimadoMin,omitempty"`
	Active        bool        `json:"activo,omitempty"`
	Orders        []Order     `json:"pedidos,omitempty"`
	CreatedAt     string      `json:"fechaCreacion,omitempty"`
	UpdatedAt     string      `json:"fechaActualizacion,omitempty"`
}

// CreateRouteInput is the payload for crearRuta.
type CreateRouteInput struct {
	CourierID    string   `json:"repartidorId"`
	RouteDate    string   `json:"fechaRuta"`
	TotalKm      *float64 `json:"distanciaTotalKm,omitempty"`
	EstimatedMin *int     `json:"tiempoEstimadoMin,omitempty"`
	OrderIDs     []string `json:"pedidosIds,omitempty"`
}

// AssignOrdersInput is the payload for asignarPedidosARuta.
type AssignOrdersInput struct {
	RouteID  string   `json:"rutaId"`
	OrderIDs []string `json:"pedidosIds"`
}
