// Package cli provides formatting and rendering utilities for terminal and
// chat output.
package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatAmount formats a money amount with thousands separators. Whole
// amounts print without decimals, others with exactly two.
// e.g., 120000 -> "120,000", -1234.5 -> "-1,234.50"
func FormatAmount(d decimal.Decimal) string {
	if d.IsInteger() {
		return humanize.BigComma(d.BigInt())
	}
	return FormatFixed2(d)
}

// FormatFixed2 formats with thousands separators and two decimals.
// e.g., 3125 -> "3,125.00"
func FormatFixed2(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole := r.Truncate(0)
	frac := r.Sub(whole).StringFixed(2) // "0.xx"
	return sign + humanize.BigComma(whole.BigInt()) + strings.TrimPrefix(frac, "0")
}

// FormatMoney formats an amount followed by its currency code.
func FormatMoney(d decimal.Decimal, currency string) string {
	if currency == "" {
		return FormatAmount(d)
	}
	return FormatAmount(d) + " " + currency
}

// ForeignEquivalent converts a local amount at buyRate (local units per
// foreign unit), rounded to two decimals. It reports false when the rate is
// missing or not positive, in which case no equivalent should be shown.
func ForeignEquivalent(amount decimal.Decimal, buyRate *decimal.Decimal) (decimal.Decimal, bool) {
	if buyRate == nil || !buyRate.IsPositive() {
		return decimal.Zero, false
	}
	return amount.DivRound(*buyRate, 2), true
}

// FormatEquivalent renders the parenthetical "(≈ 12.50 USD)" annotation,
// or "" when ForeignEquivalent reports no valid rate.
func FormatEquivalent(amount decimal.Decimal, buyRate *decimal.Decimal, foreign string) string {
	eq, ok := ForeignEquivalent(amount, buyRate)
	if !ok {
		return ""
	}
	return fmt.Sprintf("(≈ %s %s)", FormatFixed2(eq), foreign)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats a signed change with a leading + or -.
func FormatDelta(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return "-" + FormatAmount(delta.Neg())
	}
	return "+" + FormatAmount(delta)
}
