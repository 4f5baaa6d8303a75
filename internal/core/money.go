// Package core provides money parsing and formatting utilities.
//
// Amounts travel between the UI and the ledger as grouped digit strings
// ("1.000.000") in the Indonesian convention of the original wallet:
// dot thousands separators, no decimal places.
package core

import (
	"strconv"
	"unicode"
)

// ParseAmount converts a grouped amount string to smallest currency units.
//
// Every non-digit rune is stripped before parsing, so "1.000.000",
// "Rp 1.000.000" and "1000000" all yield 1000000. Input containing no
// digits at all is rejected, as is anything overflowing int64.
func ParseAmount(s string) (int64, error) {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseContribution parses a contribution amount and requires it to be
// strictly positive.
func ParseContribution(s string) (Money, error) {
	v, err := ParseAmount(s)
	if err != nil {
		return Money{}, err
	}
	if v <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Units: v}, nil
}

// FormatAmount renders units with dot thousands grouping: 1000000 -> "1.000.000".
func FormatAmount(units int64) string {
	neg := units < 0
	if neg {
		units = -units
	}
	s := strconv.FormatInt(units, 10)
	n := len(s)
	if n > 3 {
		grouped := make([]byte, 0, n+n/3)
		first := n % 3
		if first == 0 {
			first = 3
		}
		grouped = append(grouped, s[:first]...)
		for i := first; i < n; i += 3 {
			grouped = append(grouped, '.')
			grouped = append(grouped, s[i:i+3]...)
		}
		s = string(grouped)
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatCurrency renders units as a display currency string, e.g. "Rp 1.000.000".
func (m Money) FormatCurrency() string {
	if m.Units < 0 {
		return "-Rp " + FormatAmount(-m.Units)
	}
	return "Rp " + FormatAmount(m.Units)
}

// Format renders the bare grouped amount.
func (m Money) Format() string {
	return FormatAmount(m.Units)
}
