package graphql

import (
	"context"
	"sort"
	"time"

	"github.com/distria/distria/internal/domain"
)

// The dashboard pulls everything in one round trip using field aliases, the
// same aggregate the backend was designed to serve the admin landing page.
const adminStatsQuery = `
query DashboardStats {
  pedidosPorEstado(estado: ENTREGADO, page: 0, size: 1000) {
    content {
      id
      total
      fechaPedido
      fechaActualizacion
    }
    totalElements
  }
  pedidosPendientes: pedidosPorEstado(estado: PENDIENTE, page: 0, size: 1000) {
    totalElements
  }
  pedidosEnProceso: pedidosPorEstado(estado: EN_PROCESO, page: 0, size: 1000) {
    totalElements
  }
  pedidosEnCamino: pedidosPorEstado(estado: EN_CAMINO, page: 0, size: 1000) {
    totalElements
  }
  rutasActivas(page: 0, size: 1000) {
    totalElements
  }
  inventariosStockBajo(page: 0, size: 100) {
    content {
      id
      producto {
        id
        nombre
        sku
        precio
      }
      cantidad
      stockMinimo
    }
    totalElements
  }
  clientesActivos(page: 0, size: 1000) {
    totalElements
  }
  productos(page: 0, size: 1000) {
    content {
      activo
    }
    totalElements
  }
}`

type countOnly struct {
	TotalElements int `json:"totalElements"`
}

// AdminStats fetches the admin dashboard aggregate.
func (c *Client) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	var resp struct {
		Delivered domain.Page[domain.Order]     `json:"pedidosPorEstado"`
		Pending   countOnly                     `json:"pedidosPendientes"`
		InProcess countOnly                     `json:"pedidosEnProceso"`
		EnRoute   countOnly                     `json:"pedidosEnCamino"`
		Routes    countOnly                     `json:"rutasActivas"`
		LowStock  domain.Page[domain.Inventory] `json:"inventariosStockBajo"`
		Clients   countOnly                     `json:"clientesActivos"`
		Products  domain.Page[domain.Product]   `json:"productos"`
	}
	if err := c.do(ctx, "dashboardStats", adminStatsQuery, nil, &resp); err != nil {
		return nil, err
	}

	stats := &domain.AdminStats{
		DeliveredOrders: resp.Delivered.TotalElements,
		PendingOrders:   resp.Pending.TotalElements,
		InProcessOrders: resp.InProcess.TotalElements,
		EnRouteOrders:   resp.EnRoute.TotalElements,
		ActiveRoutes:    resp.Routes.TotalElements,
		ActiveClients:   resp.Clients.TotalElements,
		TotalProducts:   resp.Products.TotalElements,
		LowStock:        resp.LowStock.Content,
	}
	for _, p := range resp.Products.Content {
		if p.Active {
			stats.ActiveProducts++
		}
	}
	for _, o := range resp.Delivered.Content {
		stats.TotalRevenue += o.Total
	}
	stats.MonthlySales = groupByMonth(resp.Delivered.Content)

	return stats, nil
}

// CourierStats derives the courier dashboard figures from the courier's own
// routes, which is the only data the backend exposes to that role.
func (c *Client) CourierStats(ctx context.Context, courierID string) (*domain.CourierStats, error) {
	routes, err := c.RoutesByCourier(ctx, courierID, domain.PageRequest{Page: 0, Size: 1000})
	if err != nil {
		return nil, err
	}

	stats := &domain.CourierStats{TotalRoutes: routes.TotalElements}
	for _, route := range routes.Content {
		if route.Status == domain.RoutePlanned || route.Status == domain.RouteInProgress {
			stats.ActiveRoutes++
		}
		stats.TotalKm += route.TotalKm
		for _, order := range route.Orders {
			stats.TotalOrders++
			switch order.Status {
			case domain.OrderDelivered:
				stats.DeliveredOrders++
			case domain.OrderPending, domain.OrderProcessed, domain.OrderEnRoute:
				stats.PendingOrders++
			}
		}
	}
	return stats, nil
}

// groupByMonth buckets delivered orders into YYYY-MM points, oldest first.
func groupByMonth(orders []domain.Order) []domain.MonthlyPoint {
	buckets := make(map[string]*domain.MonthlyPoint)
	for _, o := range orders {
		ts, err := parseBackendTime(o.OrderedAt)
		if err != nil {
			continue
		}
		month := ts.Format("2006-01")
		point, ok := buckets[month]
		if !ok {
			point = &domain.MonthlyPoint{Month: month}
			buckets[month] = point
		}
		point.Total += o.Total
		point.Count++
	}

	points := make([]domain.MonthlyPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}

// parseBackendTime accepts the timestamp shapes the backend emits.
func parseBackendTime(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
