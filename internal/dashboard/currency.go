package dashboard

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as Brazilian currency: "R$ 1.234.567,80".
// Negative amounts keep the sign after the symbol ("R$ -1.000,00").
func FormatBRL(d decimal.Decimal) string {
	raw := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}
	intPart, frac, _ := strings.Cut(raw, ".")
	return "R$ " + sign + groupThousands(intPart, ".") + "," + frac
}

// FormatCount groups the digits of a count with '.'.
func FormatCount(n int) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	return groupThousands(strconv.Itoa(n), ".")
}

func groupThousands(raw string, sep string) string {
	if len(raw) <= 3 {
		return raw
	}
	var b strings.Builder
	first := len(raw) % 3
	if first == 0 {
		first = 3
	}
	b.WriteString(raw[:first])
	for i := first; i < len(raw); i += 3 {
		b.WriteString(sep)
		b.WriteString(raw[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a percentage with two decimals and a comma: "12,50%".
func FormatPercent(p decimal.Decimal) string {
	return strings.Replace(p.StringFixed(2), ".", ",", 1) + "%"
}
