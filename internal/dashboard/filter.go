// Package dashboard filters normalized amendments and computes everything the
// panel shows: summary metrics, breakdowns, the ranking and the detail table.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/painel-emendas/internal/emendas"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllSentinel is the selector value meaning "no filter on this dimension".
const AllSentinel = "Todos"

// Selection holds the three dashboard filters. Empty fields behave like AllSentinel.
type Selection struct {
	Deputado     string `json:"deputado"`
	Area         string `json:"area"`
	GrupoDespesa string `json:"grupoDespesa"`
}

// Normalized replaces empty fields with AllSentinel.
func (s Selection) Normalized() Selection {
	if strings.TrimSpace(s.Deputado) == "" {
		s.Deputado = AllSentinel
	}
	if strings.TrimSpace(s.Area) == "" {
		s.Area = AllSentinel
	}
	if strings.TrimSpace(s.GrupoDespesa) == "" {
		s.GrupoDespesa = AllSentinel
	}
	return s
}

// IsAll reports whether no filter is active.
func (s Selection) IsAll() bool {
	n := s.Normalized()
	return n.Deputado == AllSentinel && n.Area == AllSentinel && n.GrupoDespesa == AllSentinel
}

// FilterMode selects how a filter value is compared with a record field.
type FilterMode int

const (
	// ModeExact keeps records whose field equals the selected value.
	ModeExact FilterMode = iota
	// ModeContains keeps records whose field contains the value, ignoring case.
	ModeContains
)

func (m FilterMode) String() string {
	if m == ModeContains {
		return "contains"
	}
	return "exact"
}

func (m FilterMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseFilterMode accepts "exact"/"exato" and "contains"/"contem". Empty means ModeExact.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact", "exato":
		return ModeExact, nil
	case "contains", "contem", "contém":
		return ModeContains, nil
	default:
		return ModeExact, fmt.Errorf("unknown filter mode %q (use exact or contains)", s)
	}
}

// Apply returns the records matching every active filter, in input order.
// The input slice is never modified.
func Apply(records []emendas.Record, sel Selection, mode FilterMode) []emendas.Record {
	sel = sel.Normalized()
	out := make([]emendas.Record, 0, len(records))
	for _, r := range records {
		if match(r.Deputado, sel.Deputado, mode) &&
			match(r.Area, sel.Area, mode) &&
			match(r.GrupoDespesa, sel.GrupoDespesa, mode) {
			out = append(out, r)
		}
	}
	return out
}

func match(field, want string, mode FilterMode) bool {
	if want == AllSentinel {
		return true
	}
	if mode == ModeContains {
		return strings.Contains(strings.ToLower(field), strings.ToLower(strings.TrimSpace(want)))
	}
	return field == want
}

// FilterOptions are the selector choices, computed from the unfiltered table.
type FilterOptions struct {
	Deputados []string `json:"deputados"`
	Areas     []string `json:"areas"`
	Grupos    []string `json:"grupos"`
}

// Options lists the distinct values of each filter dimension sorted in
// Brazilian Portuguese order, each list led by AllSentinel.
func Options(records []emendas.Record) FilterOptions {
	col := collate.New(language.BrazilianPortuguese)
	return FilterOptions{
		Deputados: distinct(col, records, func(r emendas.Record) string { return r.Deputado }),
		Areas:     distinct(col, records, func(r emendas.Record) string { return r.Area }),
		Grupos:    distinct(col, records, func(r emendas.Record) string { return r.GrupoDespesa }),
	}
}

func distinct(col *collate.Collator, records []emendas.Record, field func(emendas.Record) string) []string {
	seen := make(map[string]struct{})
	var vals []string
	for _, r := range records {
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vals = append(vals, v)
	}
	col.SortStrings(vals)
	return append([]string{AllSentinel}, vals...)
}
