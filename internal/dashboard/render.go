package dashboard

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderText writes the view as terminal tables.
func RenderText(w io.Writer, v View) error {
	return render(w, v, false)
}

// RenderMarkdown writes the view as Markdown tables.
func RenderMarkdown(w io.Writer, v View) error {
	return render(w, v, true)
}

// RenderJSON writes the view as indented JSON.
func RenderJSON(w io.Writer, v View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func render(w io.Writer, v View, md bool) error {
	heading := func(s string) {
		if md {
			_, _ = fmt.Fprintf(w, "\n## %s\n\n", s)
		} else {
			_, _ = fmt.Fprintf(w, "\n%s\n", s)
		}
	}
	flush := func(t table.Writer) {
		if md {
			t.RenderMarkdown()
		} else {
			t.Render()
		}
	}

	if v.Message != "" {
		_, _ = fmt.Fprintf(w, "⚠ %s\n", v.Message)
	}
	sel := v.Selection.Normalized()
	_, _ = fmt.Fprintf(w, "Filtros: Deputado=%s | Área=%s | Grupo de Despesa=%s\n", sel.Deputado, sel.Area, sel.GrupoDespesa)

	heading("Resumo")
	t := newTable(w)
	t.AppendHeader(table.Row{"Valor Total", "Quantidade de Emendas", "Número de Deputados"})
	t.AppendRow(table.Row{v.Summary.TotalText(), FormatCount(v.Summary.Count), FormatCount(v.Summary.Deputados)})
	flush(t)

	for _, b := range v.Breakdowns {
		heading(b.Title)
		if len(b.Shares) == 0 {
			_, _ = fmt.Fprintln(w, "(sem dados)")
			continue
		}
		t := newTable(w)
		t.AppendHeader(table.Row{b.Dimension.Label(), "Valor", "Percentual"})
		for _, s := range b.Shares {
			t.AppendRow(table.Row{s.Label, FormatBRL(s.Valor), FormatPercent(s.Percent)})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
		})
		flush(t)
	}

	heading(fmt.Sprintf("Top %d %s", v.Settings.Limit, v.Settings.Metric.Title()))
	if len(v.Ranking) == 0 {
		_, _ = fmt.Fprintln(w, "(sem dados)")
	} else {
		t := newTable(w)
		t.AppendHeader(table.Row{"#", "Deputado", "Valor", "Emendas"})
		for i, g := range v.Ranking {
			t.AppendRow(table.Row{i + 1, g.Label, FormatBRL(g.Valor), FormatCount(g.Count)})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		flush(t)
	}

	if len(v.Detail) > 0 {
		heading("Detalhes das Emendas")
		t := newTable(w)
		t.AppendHeader(table.Row{"Deputado", "Número", "Área", "Grupo de Despesa", "Valor"})
		for _, d := range v.Detail {
			t.AppendRow(table.Row{d.Deputado, d.Numero, d.Area, d.GrupoDespesa, d.Valor})
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, Align: text.AlignRight}})
		flush(t)
		_, _ = fmt.Fprintf(w, "(%d linhas)\n", len(v.Detail))
	}
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}
