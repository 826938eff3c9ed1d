// Package core holds the ledger's record types and the parsing rules shared by
// every entry point.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered amount. Both "1234.5" and "1,234.5" are
// accepted; a lone comma with at most two trailing digits is read as a
// decimal separator ("12,5"). Anything that cannot be read one way only,
// such as "1.234,5", "1,2,3" or "1e3", is ErrInvalidAmount. Negative values
// are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// ParseNumber is the lenient numeric coercion used when reading cells back:
// thousands separators and surrounding spaces are ignored, anything else
// that is not a plain number fails.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatAmount renders an amount with thousands separators and no trailing
// zero decimals, for display.
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().String()
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// normalizeSeparators rewrites an amount into the plain form decimal parses.
// Only digits, separators and a leading sign are allowed; commas are either
// a single decimal comma or well-formed thousands groups before the dot.
func normalizeSeparators(s string) (string, bool) {
	sign := ""
	if s[0] == '+' || s[0] == '-' {
		sign, s = s[:1], s[1:]
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return "", false
		}
	}
	intPart, frac, hasDot := strings.Cut(s, ".")
	if strings.ContainsAny(frac, ".,") {
		return "", false
	}
	if !strings.Contains(intPart, ",") {
		return sign + s, true
	}

	groups := strings.Split(intPart, ",")
	if !hasDot && len(groups) == 2 && groups[0] != "" && len(groups[1]) >= 1 && len(groups[1]) <= 2 {
		return sign + groups[0] + "." + groups[1], true
	}
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return sign + strings.ReplaceAll(s, ",", ""), true
}
