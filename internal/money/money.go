// Package money parses printed charge amounts into integer cents. All
// arithmetic downstream is integer cents; floats never touch charge data.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// shape matches printed charge amounts: optional dollar sign, comma
// grouping, optional parentheses for negatives. A bare digit run like
// "02491" deliberately does not match — it needs a currency marker (dollar
// sign or a two-digit decimal tail) to count as money.
var shape = regexp.MustCompile(`^\(?-?\$\s?\d{1,3}(?:,?\d{3})*(?:\.\d{2})?\)?$|^\(?-?\d{1,3}(?:,?\d{3})*\.\d{2}\)?$`)

// ParseCents parses a printed amount into integer cents. The second return
// is false when s is not a monetary amount. Parenthesized amounts are
// negative (credits/adjustments on bills).
func ParseCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !shape.MatchString(s) {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	cents := d.Mul(decimal.NewFromInt(100))
	if !cents.IsInteger() {
		// Sub-cent precision never appears on a legitimate bill; treat as
		// not-money rather than rounding.
		return 0, false
	}
	if negative {
		return -cents.IntPart(), true
	}
	return cents.IntPart(), true
}

// IsMoney reports whether s parses as a monetary amount.
func IsMoney(s string) bool {
	_, ok := ParseCents(s)
	return ok
}

// FirstInText scans whitespace-separated words and returns the cents value
// of the first monetary word found.
func FirstInText(s string) (int64, bool) {
	for _, w := range strings.Fields(s) {
		if cents, ok := ParseCents(w); ok {
			return cents, true
		}
	}
	return 0, false
}
