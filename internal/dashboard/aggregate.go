package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/painel-emendas/internal/emendas"
	"github.com/shopspring/decimal"
)

// Summary holds the headline metrics of a filtered subset.
type Summary struct {
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"quantidade"`
	Deputados int             `json:"deputados"`
}

// TotalText is Total formatted as currency.
func (s Summary) TotalText() string { return FormatBRL(s.Total) }

// Summarize computes total value, row count and distinct legislators.
func Summarize(rows []emendas.Record) Summary {
	s := Summary{Total: decimal.Zero, Count: len(rows)}
	seen := make(map[string]struct{})
	for _, r := range rows {
		s.Total = s.Total.Add(r.Valor)
		seen[r.Deputado] = struct{}{}
	}
	s.Deputados = len(seen)
	return s
}

// Dimension is a categorical field rows can be grouped by.
type Dimension int

const (
	DimDeputado Dimension = iota
	DimArea
	DimGrupo
	DimLocalizacao
	DimBeneficiario
	DimTransferencia
	DimTipo
)

var dimensionNames = []string{"deputado", "area", "grupo", "localizacao", "beneficiario", "transferencia", "tipo"}

var dimensionLabels = []string{
	"Deputado", "Área", "Grupo de Despesa", "Localização",
	"Beneficiário", "Transferência Especial", "Tipo de Emenda",
}

func (d Dimension) String() string {
	if d < 0 || int(d) >= len(dimensionNames) {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// MarshalText renders the dimension name.
func (d Dimension) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Label is the column title shown to users.
func (d Dimension) Label() string {
	if d < 0 || int(d) >= len(dimensionLabels) {
		return d.String()
	}
	return dimensionLabels[d]
}

// ParseDimension maps a name such as "area" or "grupo" to its Dimension.
func ParseDimension(s string) (Dimension, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "área":
		key = "area"
	case "grupodespesa", "gnd":
		key = "grupo"
	case "nomedeputado", "autor":
		key = "deputado"
	}
	for i, n := range dimensionNames {
		if n == key {
			return Dimension(i), nil
		}
	}
	return DimArea, fmt.Errorf("unknown dimension %q (use one of %s)", s, strings.Join(dimensionNames, ", "))
}

// Value extracts the dimension's label from a record.
func (d Dimension) Value(r emendas.Record) string {
	switch d {
	case DimDeputado:
		return r.Deputado
	case DimArea:
		return r.Area
	case DimGrupo:
		return r.GrupoDespesa
	case DimLocalizacao:
		return r.Localizacao
	case DimBeneficiario:
		return r.Beneficiario
	case DimTransferencia:
		return r.Transferencia.String()
	case DimTipo:
		return r.Tipo.String()
	default:
		return ""
	}
}

// Group is the sum and count of one dimension value.
type Group struct {
	Label string          `json:"label"`
	Valor decimal.Decimal `json:"valor"`
	Count int             `json:"quantidade"`
}

// GroupBy sums valor per dimension value, in order of first appearance.
func GroupBy(rows []emendas.Record, dim Dimension) []Group {
	pos := make(map[string]int)
	out := []Group{}
	for _, r := range rows {
		key := dim.Value(r)
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, Group{Label: key, Valor: decimal.Zero})
		}
		out[i].Valor = out[i].Valor.Add(r.Valor)
		out[i].Count++
	}
	return out
}

// Share is one line of a percentage breakdown.
type Share struct {
	Label   string          `json:"label"`
	Valor   decimal.Decimal `json:"valor"`
	Percent decimal.Decimal `json:"percentual"`
}

// Breakdown returns each dimension value's share of the subset total, rounded to
// two decimals and sorted by share descending; equal shares keep first-appearance
// order. The result is empty when there are no rows or the total is zero.
func Breakdown(rows []emendas.Record, dim Dimension) []Share {
	out := []Share{}
	total := Summarize(rows).Total
	if len(rows) == 0 || total.IsZero() {
		return out
	}
	hundred := decimal.NewFromInt(100)
	for _, g := range GroupBy(rows, dim) {
		out = append(out, Share{
			Label:   g.Label,
			Valor:   g.Valor,
			Percent: g.Valor.Mul(hundred).Div(total).Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percent.GreaterThan(out[j].Percent)
	})
	return out
}

// RankingMetric orders the legislator ranking.
type RankingMetric int

const (
	RankByValue RankingMetric = iota
	RankByCount
)

// DefaultRankLimit is how many legislators the ranking shows.
const DefaultRankLimit = 10

func (m RankingMetric) String() string {
	if m == RankByCount {
		return "quantidade"
	}
	return "valor"
}

func (m RankingMetric) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Title is the heading used for the ranking chart and table.
func (m RankingMetric) Title() string {
	if m == RankByCount {
		return "Deputados por Quantidade de Emendas"
	}
	return "Deputados por Valor Total de Emendas"
}

// ParseRankingMetric accepts "valor"/"value" and "quantidade"/"count". Empty means RankByValue.
func ParseRankingMetric(s string) (RankingMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "valor", "value":
		return RankByValue, nil
	case "quantidade", "count":
		return RankByCount, nil
	default:
		return RankByValue, fmt.Errorf("unknown ranking metric %q (use valor or quantidade)", s)
	}
}

// Rank returns the top limit legislators by metric. Ties keep the order in which
// legislators first appear in rows. A limit <= 0 means DefaultRankLimit.
func Rank(rows []emendas.Record, metric RankingMetric, limit int) []Group {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	groups := GroupBy(rows, DimDeputado)
	sort.SliceStable(groups, func(i, j int) bool {
		if metric == RankByCount {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Valor.GreaterThan(groups[j].Valor)
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// DetailRow is one line of the detail table.
type DetailRow struct {
	Deputado     string          `json:"nomeDeputado"`
	Numero       string          `json:"numero"`
	Area         string          `json:"area"`
	GrupoDespesa string          `json:"grupoDespesa"`
	Valor        string          `json:"valor"`
	Amount       decimal.Decimal `json:"valorNumerico"`
}

// Detail projects rows onto the detail table columns with formatted values.
func Detail(rows []emendas.Record) []DetailRow {
	out := make([]DetailRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, DetailRow{
			Deputado:     r.Deputado,
			Numero:       r.Numero,
			Area:         r.Area,
			GrupoDespesa: r.GrupoDespesa,
			Valor:        FormatBRL(r.Valor),
			Amount:       r.Valor,
		})
	}
	return out
}
