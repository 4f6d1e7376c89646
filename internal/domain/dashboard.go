package domain

// AdminStats aggregates the figures shown on the administrator dashboard.
// All counts come from the backend; only the monthly grouping of delivered
// orders is derived locally for the sales chart.
type AdminStats struct {
	DeliveredOrders int
	PendingOrders   int
	InProcessOrders int
	EnRouteOrders   int
	ActiveRoutes    int
	ActiveClients   int
	TotalProducts   int
	ActiveProducts  int
	TotalRevenue    float64
	LowStock        []Inventory
	MonthlySales    []MonthlyPoint
}

// MonthlyPoint is one bar of the monthly sales chart.
type MonthlyPoint struct {
	Month string // YYYY-MM
	Total float64
	Count int
}

// CourierStats aggregates the figures shown on the courier dashboard,
// derived from the courier's own routes.
type CourierStats struct {
	TotalRoutes     int
	ActiveRoutes    int
	TotalOrders     int
	DeliveredOrders int
	PendingOrders   int
	TotalKm         float64
}
