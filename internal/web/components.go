package web

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/a-h/templ"
)

// DatastarURL is the client bundle loaded by the page.
const DatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"brl":   dashboard.FormatBRL,
	"pct":   dashboard.FormatPercent,
	"count": dashboard.FormatCount,
}).ParseFS(templateFS, "templates/*.html"))

// pageData feeds the page, filters and panel templates.
type pageData struct {
	Title       string
	DatastarURL string
	View        dashboard.View
	// Input holds the raw filter text for contains mode, "" meaning no filter.
	Input       dashboard.Selection
	Contains    bool
	Metric      string
	SignalsJSON string

	AreaChartURL    template.URL
	RankingChartURL template.URL
	ExportURL       template.URL
}

func component(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// pageComponent is the full dashboard document.
func pageComponent(data pageData) templ.Component { return component("page", data) }

// filtersComponent is the sidebar form, patched by id "filtros".
func filtersComponent(data pageData) templ.Component { return component("filters", data) }

// panelComponent holds the metrics, charts and tables, patched by id "painel".
func panelComponent(data pageData) templ.Component { return component("panel", data) }
