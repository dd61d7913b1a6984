// Package charts renders the dashboard charts as SVG.
package charts

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/wcharczuk/go-chart/v2"
)

// Size of the rendered charts, in pixels.
const (
	Width  = 720
	Height = 420
)

const maxLabel = 28

// AreaPie draws the share of each area in the filtered total. Groups with a
// non-positive value cannot be drawn as slices and are left out.
func AreaPie(w io.Writer, groups []dashboard.Group) error {
	var values []chart.Value
	for _, g := range groups {
		f := g.Valor.InexactFloat64()
		if f <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: shorten(g.Label), Value: f})
	}
	if len(values) == 0 {
		return Placeholder(w, "Valor por Área")
	}
	pie := chart.PieChart{
		Width:  Width,
		Height: Height,
		Values: values,
	}
	if err := pie.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

// RankingBar draws the legislator ranking, valued in BRL or in amendment counts.
func RankingBar(w io.Writer, ranking []dashboard.Group, metric dashboard.RankingMetric) error {
	var bars []chart.Value
	lo, hi := 0.0, 0.0
	for _, g := range ranking {
		v := g.Valor.InexactFloat64()
		if metric == dashboard.RankByCount {
			v = float64(g.Count)
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		bars = append(bars, chart.Value{Label: shorten(g.Label), Value: v})
	}
	if hi <= 0 {
		return Placeholder(w, metric.Title())
	}
	format := func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprint(v)
		}
		if metric == dashboard.RankByCount {
			return dashboard.FormatCount(int(f))
		}
		return compactBRL(f)
	}
	bc := chart.BarChart{
		Width:    Width,
		Height:   Height,
		BarWidth: barWidth(len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
		},
		// Anchored at zero: go-chart rejects a range derived from equal bars.
		YAxis: chart.YAxis{
			ValueFormatter: format,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render ranking chart: %w", err)
	}
	return nil
}

// Placeholder writes a small SVG saying there is nothing to plot.
func Placeholder(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#f8f9fa"/>`+
		`<text x="50%%" y="45%%" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#495057">%s</text>`+
		`<text x="50%%" y="55%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#868e96">Sem dados</text>`+
		`</svg>`,
		Width, Height, Width, Height, html.EscapeString(title))
	return err
}

func barWidth(n int) int {
	if n <= 0 {
		return 40
	}
	w := (Width - 80) / n * 2 / 3
	if w > 60 {
		return 60
	}
	if w < 12 {
		return 12
	}
	return w
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return strings.TrimSpace(string(r[:maxLabel-1])) + "…"
}

// compactBRL keeps axis ticks short: "R$ 1,5 mi", "R$ 250 mil".
func compactBRL(f float64) string {
	switch {
	case f >= 1e9 || f <= -1e9:
		return "R$ " + strings.Replace(fmt.Sprintf("%.1f bi", f/1e9), ".", ",", 1)
	case f >= 1e6 || f <= -1e6:
		return "R$ " + strings.Replace(fmt.Sprintf("%.1f mi", f/1e6), ".", ",", 1)
	case f >= 1e3 || f <= -1e3:
		return fmt.Sprintf("R$ %.0f mil", f/1e3)
	default:
		return fmt.Sprintf("R$ %.0f", f)
	}
}
