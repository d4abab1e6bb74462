// Package core provides the transaction and anchor domain types shared by the
// insight heuristics.
//
// This file contains money parsing and formatting helpers. Amounts are kept
// as integer cents to avoid floating-point drift in aggregation; thresholds
// that the heuristics express in whole currency units are converted to cents
// at their definition site.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// UnitsOf converts whole currency units to Money. The heuristics' thresholds
// (micro-leak bounds, weekly/monthly sums) are specified in units.
func UnitsOf(units int64) Money {
	return Money{Cents: units * 100}
}

// Units returns the amount in whole currency units, rounded half away from
// zero. Display-only; comparisons always use cents.
func (m Money) Units() int64 {
	return int64(math.Round(float64(m.Cents) / 100.0))
}

// Float returns the amount in currency units as a float64 for rate math.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Scale multiplies the amount by a factor, rounding half away from zero.
// Anchor thresholds are derived this way (0.9x and 1.5x of a month's
// dominant category total).
func (m Money) Scale(factor float64) Money {
	return Money{Cents: int64(math.Round(float64(m.Cents) * factor))}
}

// Display renders the amount for insight message text, e.g. "₹450". Whole
// units only, matching the dashboard's insight copy.
func (m Money) Display() string {
	return fmt.Sprintf("₹%d", m.Units())
}

// MarshalJSON encodes the amount as a bare cent count.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	cents, err := strconv.ParseInt(strings.Trim(string(b), `"`), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = cents
	return nil
}
