// Package utils provides formatting and calendar helpers for fxdash.
package utils

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// FormatBRL formats a rate in reais with four decimals (R$ 5.1234).
// Non-finite values render as a placeholder.
func FormatBRL(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "R$ --.--"
	}
	return fmt.Sprintf("R$ %.4f", v)
}

// FormatPercent formats a signed percentage with two decimals (+1.23%).
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--.--%"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatMoney renders an amount with a currency symbol and two decimals,
// e.g. FormatMoney("US$", 12.5) → "US$ 12.50".
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + " " + amount.StringFixed(2)
}
