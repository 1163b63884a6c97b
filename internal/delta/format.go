package delta

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatNum renders integral values without decimals and everything else with
// exactly one decimal, rounding half away from zero. NaN and infinities are
// printed as strconv renders them.
func FormatNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return formatDecimal(decimal.NewFromFloat(v))
}

func formatDecimal(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.String()
	}
	return d.StringFixed(1)
}
