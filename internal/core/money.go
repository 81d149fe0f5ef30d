// Package core provides the domain types shared by the action layer, the
// backend API client, and the web handlers.
//
// Monetary amounts are stored as minor units (cents); no floating-point
// arithmetic touches money.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts user input like "12.34" or "12,34" to cents.
// A third decimal digit rounds half-up. Invalid formats, signed values and
// zero amounts all return ErrInvalidAmount; amounts are always strictly
// positive.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidAmount
	}

	whole, frac, _ := strings.Cut(s, ".")
	if strings.Contains(frac, ".") {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > math.MaxInt64/100 {
		return 0, ErrInvalidAmount
	}

	cents := units * 100
	if len(frac) >= 1 {
		cents += int64(frac[0]-'0') * 10
	}
	if len(frac) >= 2 {
		cents += int64(frac[1] - '0')
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Units returns the whole-unit value for display. Calculations stay in
// cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}
