// Package report renders the downloadable PDF reports of the dashboard.
package report

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// Brand Palette
// =============================================================================

// brandColors holds the hex palette shared by all reports.
var brandColors = struct {
	Navy      string // headers and accents
	TextDark  string // primary text
	TextMuted string // secondary text
	Border    string // separator lines
	RowAlt    string // zebra stripe fill
	Red       string // low stock / canceled
	Green     string // delivered
}{
	Navy:      "#1E3A5F",
	TextDark:  "#1F2937",
	TextMuted: "#6B7280",
	Border:    "#E5E7EB",
	RowAlt:    "#F3F4F6",
	Red:       "#DC2626",
	Green:     "#16A34A",
}

// hexToRGB converts a "#RRGGBB" string to its components. Invalid input
// falls back to black.
func hexToRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	r, err1 := strconv.ParseInt(hex[1:3], 16, 0)
	g, err2 := strconv.ParseInt(hex[3:5], 16, 0)
	b, err3 := strconv.ParseInt(hex[5:7], 16, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0
	}
	return int(r), int(g), int(b)
}

// =============================================================================
// Formatting Helpers
// =============================================================================

// formatDateTime renders a timestamp for report footers.
func formatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// formatBackendDate trims a backend ISO timestamp to a display date.
// Backend dates arrive as strings; an unparseable value is shown as-is.
func formatBackendDate(s string) string {
	if s == "" {
		return "-"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

// formatMoney renders an amount in bolivianos.
func formatMoney(amount float64) string {
	return fmt.Sprintf("Bs %.2f", amount)
}
