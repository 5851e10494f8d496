package gateway

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatAmount renders v with a fixed number of decimal places and comma
// thousands separators, matching what the frontend displays verbatim.
func formatAmount(v decimal.Decimal, places int32) string {
	s := v.StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

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
	b.WriteString(fracPart)
	return b.String()
}

// formatChangePercent renders a 24h change with an explicit sign, e.g. "+1.25%".
func formatChangePercent(v decimal.Decimal) string {
	s := v.StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}
