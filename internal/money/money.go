// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package money parses and renders the currency, unit and percentage values
// shown in command responses.
//
// Amounts are shopspring decimals so repeated additions never drift the way
// binary floats do. Rendering follows the historical output exactly:
//
//	FormatCurrency(decimal.RequireFromString("1234.5"))  // "$1,234.50"
//	FormatCurrency(decimal.RequireFromString("-5"))      // "$-5.00"
//	FormatUnits(12000)                                   // "12,000"
//	FormatPercent(decimal.RequireFromString("33.333"))   // "33.3%"
package money

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is returned when an argument is not a usable number.
var ErrInvalidNumber = errors.New("invalid number")

// MaxAmount is the largest magnitude ParseAmount accepts.
var MaxAmount = decimal.New(1, 15)

// maxExponent bounds the decimal exponent of parsed amounts in both
// directions.
const maxExponent = 18

// =============================================================================
// PARSING
// =============================================================================

// ParseAmount parses a signed decimal amount such as "150", "-12.5" or "1e3".
// Thousands separators are accepted ("1,250.00") since they are what the
// responses themselves print. An optional leading "$" is ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := normalizeNumber(s)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	// Exponent first: comparing a value like 1e5000000 against MaxAmount
	// would itself expand it.
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, s)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %s", ErrInvalidNumber, s, MaxAmount.String())
	}
	return d, nil
}

// ParseUnits parses a whole unit count. Fractions are rejected rather than
// truncated so "/add 2.5 to sales" is reported instead of silently rounded.
func ParseUnits(s string) (int64, error) {
	if strings.Contains(s, "$") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	n, err := strconv.ParseInt(normalizeNumber(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return n, nil
}

func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	switch {
	case strings.HasPrefix(s, "$"):
		s = s[1:]
	case strings.HasPrefix(s, "-$"):
		s = "-" + s[2:]
	}
	return s
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatCurrency renders "$" followed by a comma-grouped amount with exactly
// two decimal places. The sign follows the dollar sign.
func FormatCurrency(d decimal.Decimal) string {
	return "$" + grouped(d, 2)
}

// FormatUnits renders a whole unit count with thousands separators.
func FormatUnits(n int64) string {
	return humanize.Comma(n)
}

// FormatWhole renders a decimal rounded to a whole number with thousands
// separators, as used for break-even unit counts.
func FormatWhole(d decimal.Decimal) string {
	return grouped(d, 0)
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// FormatQuantity renders a stock quantity with one decimal place.
func FormatQuantity(d decimal.Decimal) string {
	return d.StringFixed(1)
}

func grouped(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return d.StringFixed(places)
	}

	out := humanize.BigComma(n)
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
