package dashboard

import (
	"time"

	"github.com/KaramelBytes/painel-emendas/internal/emendas"
)

// Settings are the presentation choices that are not filters.
type Settings struct {
	Mode   FilterMode    `json:"modo"`
	Metric RankingMetric `json:"ranking"`
	Limit  int           `json:"limite"`
	// Breakdowns lists the percentage tables to compute. Nil means area and grupo.
	Breakdowns []Dimension `json:"-"`
}

// DefaultSettings match the dashboard defaults.
func DefaultSettings() Settings {
	return Settings{Mode: ModeExact, Metric: RankByValue, Limit: DefaultRankLimit}
}

func (s Settings) dimensions() []Dimension {
	if len(s.Breakdowns) == 0 {
		return []Dimension{DimArea, DimGrupo}
	}
	return s.Breakdowns
}

// BreakdownTable is a percentage breakdown along one dimension.
type BreakdownTable struct {
	Dimension Dimension `json:"dimensao"`
	Title     string    `json:"titulo"`
	Shares    []Share   `json:"itens"`
}

// View is everything one render of the dashboard needs.
type View struct {
	SnapshotID string           `json:"snapshot"`
	Source     string           `json:"fonte"`
	LoadedAt   time.Time        `json:"carregadoEm"`
	Message    string           `json:"erro,omitempty"`
	Selection  Selection        `json:"selecao"`
	Settings   Settings         `json:"configuracao"`
	Options    FilterOptions    `json:"opcoes"`
	Summary    Summary          `json:"resumo"`
	AreaSeries []Group          `json:"valorPorArea"`
	Breakdowns []BreakdownTable `json:"distribuicao"`
	Ranking    []Group          `json:"ranking"`
	Detail     []DetailRow      `json:"detalhes"`
}

// Build filters the snapshot and computes every panel for the selection.
// A nil or failed snapshot yields a zero-valued view carrying the load message.
func Build(snap *emendas.Snapshot, sel Selection, s Settings) View {
	var records []emendas.Record
	v := View{Selection: sel.Normalized(), Settings: s}
	if snap != nil {
		records = snap.Records
		v.SnapshotID = snap.ID
		v.Source = snap.Source
		v.LoadedAt = snap.LoadedAt
		v.Message = snap.Message()
	}
	if v.Settings.Limit <= 0 {
		v.Settings.Limit = DefaultRankLimit
	}

	rows := Apply(records, v.Selection, s.Mode)
	v.Options = Options(records)
	v.Summary = Summarize(rows)
	v.AreaSeries = GroupBy(rows, DimArea)
	for _, d := range s.dimensions() {
		v.Breakdowns = append(v.Breakdowns, BreakdownTable{
			Dimension: d,
			Title:     "Distribuição por " + d.Label(),
			Shares:    Breakdown(rows, d),
		})
	}
	v.Ranking = Rank(rows, s.Metric, v.Settings.Limit)
	v.Detail = Detail(rows)
	return v
}

// Breakdown returns the table for dim, or nil when it was not computed.
func (v View) Breakdown(dim Dimension) []Share {
	for _, b := range v.Breakdowns {
		if b.Dimension == dim {
			return b.Shares
		}
	}
	return nil
}
