package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the single currency all money in the system is kept in.
type Currency struct {
	Code   string
	Symbol string
	Places int32
}

func DefaultCurrency() Currency {
	return Currency{Code: "PKR", Symbol: "Rs.", Places: 2}
}

func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Places)
}

// Format renders amount as "Rs. 1,234.50".
func (c Currency) Format(amount decimal.Decimal) string {
	s := c.Round(amount).StringFixed(c.Places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := c.Symbol + " " + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
