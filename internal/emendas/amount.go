package emendas

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberFormat fixes the separators of amounts written as text. A zero
// Decimal means auto-detect per value.
type NumberFormat struct {
	Decimal   rune
	Thousands rune // optional; defaults to the other of ',' and '.'
}

// ParseAmount parses a monetary amount written as text, auto-detecting the
// separators. With both ',' and '.', the rightmost one is decimal ("1.234,56",
// "1,234.56"). A separator repeated more than once groups thousands
// ("1.000.000"). A lone '.' followed by exactly three digits groups thousands
// too ("1.000", "150.000"), as Brazilian sources write them; otherwise a lone
// ',' or '.' is the decimal separator ("10,5", "2,500", "10.5").
// An optional "R$" prefix and spaces are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	return NumberFormat{}.Parse(s)
}

// Parse parses s with the configured separators.
func (f NumberFormat) Parse(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	dec, thou := f.Decimal, f.Thousands
	if dec == 0 {
		dec, thou = detectSeparators(raw)
	} else if thou == 0 {
		switch dec {
		case ',':
			thou = '.'
		case '.':
			thou = ','
		}
	}
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != 0 && dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func detectSeparators(raw string) (dec, thou rune) {
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			return ',', '.'
		}
		return '.', ','
	case strings.Count(raw, ",") > 1:
		return 0, ','
	case cpos >= 0:
		return ',', 0
	case strings.Count(raw, ".") > 1:
		return 0, '.'
	case dpos >= 0 && thousandsGroup(raw, dpos):
		return 0, '.'
	default:
		return '.', 0
	}
}

// thousandsGroup reports whether the separator at pos splits a 1-3 digit
// integer part (not "0") from exactly three digits.
func thousandsGroup(raw string, pos int) bool {
	head := strings.TrimLeft(raw[:pos], "+-")
	tail := raw[pos+1:]
	if len(tail) != 3 || !allDigits(tail) {
		return false
	}
	return len(head) >= 1 && len(head) <= 3 && allDigits(head) && head[0] != '0'
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
