package handler

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/distria/distria/internal/domain"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	// Latin American Spanish formatting for quantities and money
	printer := message.NewPrinter(language.LatinAmericanSpanish)

	return template.FuncMap{
		// Math functions
		"div": func(a, b int) int {
			if b == 0 {
				return 0
			}
			return a / b
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"mul": func(a, b int) int {
			return a * b
		},
		"min": func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},

		// Number/money formatting
		"formatNumber": func(n int) string {
			return printer.Sprintf("%d", n)
		},
		"formatMoney": func(amount float64) string {
			return printer.Sprintf("Bs %.2f", amount)
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
		"formatDateISO": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		// Backend timestamps arrive as strings; show the date part.
		"backendDate": func(s string) string {
			if s == "" {
				return "-"
			}
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
				if t, err := time.Parse(layout, s); err == nil {
					return t.Format("02/01/2006")
				}
			}
			return s
		},

		// String functions
		"hasPrefix": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},
		"contains": func(s, substr string) bool {
			return strings.Contains(s, substr)
		},
		"lower": func(s string) string {
			return strings.ToLower(s)
		},
		"upper": func(s string) string {
			return strings.ToUpper(s)
		},
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
		// JSON encoding for safe JavaScript embedding
		"json": func(v interface{}) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS(`""`)
			}
			return template.JS(b)
		},

		// Conditional/Logic functions
		"ternary": func(condition bool, trueVal, falseVal interface{}) interface{} {
			if condition {
				return trueVal
			}
			return falseVal
		},
		"default": func(defaultVal, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},

		// Collection functions
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil
				}
				dict[key] = values[i+1]
			}
			return dict
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
		"pageRange": func(currentPage, totalPages int) []int {
			// Show max 7 page numbers. Pages are zero-based like the backend's.
			maxPages := 7
			if totalPages <= maxPages {
				result := []int{}
				for i := 0; i < totalPages; i++ {
					result = append(result, i)
				}
				return result
			}

			start := currentPage - 3
			end := currentPage + 3

			if start < 0 {
				start = 0
				end = maxPages - 1
			}
			if end > totalPages-1 {
				end = totalPages - 1
				start = totalPages - maxPages
			}

			result := []int{}
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		// HTML rendering functions
		"html": func(s string) template.HTML {
			return template.HTML(s)
		},
		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`, template.HTMLEscapeString(token)))
		},

		// Status lists for filter dropdowns
		"orderStatuses": func() []domain.OrderStatus {
			return domain.OrderStatuses
		},
		"routeStatuses": func() []domain.RouteStatus {
			return domain.RouteStatuses
		},

		// Status/badge helpers
		// These functions accept interface{} to handle custom string types
		// like domain.OrderStatus and domain.RouteStatus
		"orderStatusColor": func(status interface{}) string {
			switch fmt.Sprint(status) {
			case "PENDIENTE":
				return "badge-yellow"
			case "EN_PROCESO":
				return "badge-blue"
			case "EN_CAMINO":
				return "badge-indigo"
			case "ENTREGADO":
				return "badge-green"
			case "CANCELADO":
				return "badge-red"
			default:
				return "badge-gray"
			}
		},
		"orderStatusLabel": func(status interface{}) string {
			switch fmt.Sprint(status) {
			case "PENDIENTE":
				return "Pendiente"
			case "EN_PROCESO":
				return "En proceso"
			case "EN_CAMINO":
				return "En camino"
			case "ENTREGADO":
				return "Entregado"
			case "CANCELADO":
				return "Cancelado"
			default:
				return fmt.Sprint(status)
			}
		},
		"routeStatusColor": func(status interface{}) string {
			switch fmt.Sprint(status) {
			case "PLANIFICADA":
				return "badge-yellow"
			case "EN_CURSO":
				return "badge-blue"
			case "COMPLETADA":
				return "badge-green"
			case "CANCELADA":
				return "badge-red"
			default:
				return "badge-gray"
			}
		},
		"routeStatusLabel": func(status interface{}) string {
			switch fmt.Sprint(status) {
			case "PLANIFICADA":
				return "Planificada"
			case "EN_CURSO":
				return "En curso"
			case "COMPLETADA":
				return "Completada"
			case "CANCELADA":
				return "Cancelada"
			default:
				return fmt.Sprint(status)
			}
		},
		"movementColor": func(kind interface{}) string {
			if fmt.Sprint(kind) == "ENTRADA" {
				return "badge-green"
			}
			return "badge-red"
		},
		"roleLabel": func(role interface{}) string {
			if fmt.Sprint(role) == "REPARTIDOR" {
				return "Repartidor"
			}
			return "Administrador"
		},
		"stockColor": func(current, min int) string {
			if current <= min {
				return "badge-red"
			}
			return "badge-green"
		},
	}
}
