// Package core provides the asset domain model.
//
// This file contains functions for parsing amounts typed into forms and
// formatting them for display.
package core

import (
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every displayed amount.
const CurrencySymbol = "¥"

// ParseAmount converts user input into a signed decimal amount.
//
// It accepts an optional leading sign and currency symbol, a dot decimal
// separator, and comma thousands separators (1,234 or 1,234,567.89). A single
// comma followed by one or two trailing digits is read as a decimal
// separator instead (12,5). Negative values are valid: they record
// liabilities such as a credit-card balance.
//
// Examples:
//   ParseAmount("8000")      -> 8000, nil
//   ParseAmount("-5000")     -> -5000, nil
//   ParseAmount("12,5")      -> 12.5, nil
//   ParseAmount("1,234")     -> 1234, nil
//   ParseAmount("¥1,234.56") -> 1234.56, nil
//   ParseAmount("abc")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, CurrencySymbol, "", 1)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		switch {
		case !strings.Contains(s, ".") && decimalComma.MatchString(s):
			s = strings.Replace(s, ",", ".", 1)
		case groupedAmount.MatchString(s):
			s = strings.ReplaceAll(s, ",", "")
		default:
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

var (
	decimalComma  = regexp.MustCompile(`^[+-]?\d*,\d{1,2}$`)
	groupedAmount = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)
)

// FormatAmount renders an amount rounded to two decimals with thousands
// separators, e.g. "¥1,234.50" or "-¥5,000.00". Amounts that round to zero
// carry no sign.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	frac := fixed[strings.IndexByte(fixed, '.'):]
	return sign + CurrencySymbol + humanize.BigComma(d.Truncate(0).BigInt()) + frac
}

// FormatPlain renders an amount with exactly two decimals and no grouping,
// suitable for form inputs.
func FormatPlain(d decimal.Decimal) string {
	return d.StringFixed(2)
}
