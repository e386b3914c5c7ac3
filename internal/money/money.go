// Package money renders decimal amounts for display. Amounts are stored
// and computed as shopspring decimals; formatting happens only at the edge.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an amount with the rupee glyph, two decimal places and
// comma-grouped thousands, e.g. ₹1,234.56.
func Format(d decimal.Decimal) string {
	return "₹" + Plain(d)
}

// Plain is Format without the currency glyph. The PDF export pairs it with
// an ASCII prefix since the built-in fonts carry no rupee glyph.
func Plain(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	b.Grow(len(whole) + len(whole)/3 + len(frac) + 1)
	if neg {
		b.WriteByte('-')
	}
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}
