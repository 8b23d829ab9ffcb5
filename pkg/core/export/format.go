// Package export renders a session view as XLSX or PDF documents.
package export

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders v as whole US dollars with thousands separators,
// e.g. 1234567.5 -> "$1,234,568" and -42 -> "-$42".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	d := decimal.NewFromFloat(v).Round(0)
	grouped := groupThousands(d.Abs().String())
	if d.IsNegative() {
		return "-$" + grouped
	}
	return "$" + grouped
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
