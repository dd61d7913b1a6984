package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"

	"github.com/KaramelBytes/painel-emendas/internal/charts"
	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/emendas"
	"github.com/KaramelBytes/painel-emendas/internal/export"
	"github.com/KaramelBytes/painel-emendas/internal/logger"
	"github.com/KaramelBytes/painel-emendas/internal/web/notifier"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
)

// Query parameters and datastar signal names.
const (
	paramDeputado = "deputado"
	paramArea     = "area"
	paramGrupo    = "grupo"
	paramModo     = "modo"
	paramRanking  = "ranking"
)

// panelSignals is the client state sent by datastar with every @get.
type panelSignals struct {
	Deputado string `json:"deputado"`
	Area     string `json:"area"`
	Grupo    string `json:"grupo"`
	Modo     string `json:"modo"`
	Ranking  string `json:"ranking"`
	Snapshot string `json:"snapshot"`
}

// Handlers serves the dashboard routes.
type Handlers struct {
	cache        *emendas.Cache
	settings     dashboard.Settings
	title        string
	sessionStore sessions.Store
	notifier     *notifier.Notifier
}

// NewHandlers creates a Handlers instance.
func NewHandlers(cache *emendas.Cache, settings dashboard.Settings, title string, store sessions.Store, notify *notifier.Notifier) *Handlers {
	return &Handlers{
		cache:        cache,
		settings:     settings,
		title:        title,
		sessionStore: store,
		notifier:     notify,
	}
}

// Page renders the full dashboard. Without filter parameters the last
// selection stored in the session cookie is used.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	sel, settings, fromQuery := h.parseQuery(r.URL.Query())
	if !fromQuery {
		sel, settings = h.restore(r, sel, settings)
	}
	h.remember(w, r, sel, settings)

	var buf bytes.Buffer
	if err := pageComponent(h.pageData(sel, settings)).Render(r.Context(), &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Panel re-renders the panel for the selection carried by datastar signals.
func (h *Handlers) Panel(w http.ResponseWriter, r *http.Request) {
	// Signals must be read before the SSE stream takes over the response.
	var signals panelSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}
	sel, settings := h.fromSignals(signals)
	h.remember(w, r, sel, settings)

	sse := datastar.NewSSE(w, r)
	data := h.pageData(sel, settings)
	if !data.Contains {
		if err := sse.PatchElementTempl(filtersComponent(data)); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
	if err := sse.PatchElementTempl(panelComponent(data)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Updates is the long-lived SSE endpoint. When the source changes it pushes
// the new snapshot ID, which makes the page request a fresh panel.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.MarshalAndPatchSignals(map[string]any{"snapshot": id}); err != nil {
				l := logger.FromContext(ctx)
				l.Debug().Err(err).Msg("updates stream closed")
				return
			}
		}
	}
}

// AreaChart serves the area pie chart as SVG.
func (h *Handlers) AreaChart(w http.ResponseWriter, r *http.Request) {
	sel, settings, _ := h.parseQuery(r.URL.Query())
	v := dashboard.Build(h.cache.Get(), sel, settings)
	var buf bytes.Buffer
	if err := charts.AreaPie(&buf, v.AreaSeries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeSVG(w, &buf)
}

// RankingChart serves the legislator ranking bar chart as SVG.
func (h *Handlers) RankingChart(w http.ResponseWriter, r *http.Request) {
	sel, settings, _ := h.parseQuery(r.URL.Query())
	v := dashboard.Build(h.cache.Get(), sel, settings)
	var buf bytes.Buffer
	if err := charts.RankingBar(&buf, v.Ranking, settings.Metric); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeSVG(w, &buf)
}

func writeSVG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// Export downloads the filtered detail table as xlsx.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	sel, settings, _ := h.parseQuery(r.URL.Query())
	v := dashboard.Build(h.cache.Get(), sel, settings)
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, v); err != nil {
		l := logger.FromContext(r.Context())
		l.Error().Err(err).Msg("export failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="emendas_filtradas.xlsx"`)
	_, _ = buf.WriteTo(w)
}

// Health reports the state of the current snapshot.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	snap := h.cache.Get()
	body := map[string]any{
		"status":   "ok",
		"snapshot": snap.ID,
		"records":  len(snap.Records),
	}
	if snap.Failed() {
		body["status"] = "degraded"
		body["error"] = snap.Message()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// parseQuery reads the selection and settings from URL parameters. The last
// result reports whether any filter parameter was present.
func (h *Handlers) parseQuery(q url.Values) (dashboard.Selection, dashboard.Settings, bool) {
	sel := dashboard.Selection{
		Deputado:     q.Get(paramDeputado),
		Area:         q.Get(paramArea),
		GrupoDespesa: q.Get(paramGrupo),
	}
	settings := h.withOverrides(q.Get(paramModo), q.Get(paramRanking))
	present := false
	for _, k := range []string{paramDeputado, paramArea, paramGrupo, paramModo, paramRanking} {
		if q.Has(k) {
			present = true
			break
		}
	}
	return sel, settings, present
}

func (h *Handlers) fromSignals(s panelSignals) (dashboard.Selection, dashboard.Settings) {
	sel := dashboard.Selection{Deputado: s.Deputado, Area: s.Area, GrupoDespesa: s.Grupo}
	return sel, h.withOverrides(s.Modo, s.Ranking)
}

// withOverrides applies valid modo/ranking values over the configured settings.
// Unknown values are ignored.
func (h *Handlers) withOverrides(modo, ranking string) dashboard.Settings {
	s := h.settings
	if modo != "" {
		if m, err := dashboard.ParseFilterMode(modo); err == nil {
			s.Mode = m
		}
	}
	if ranking != "" {
		if m, err := dashboard.ParseRankingMetric(ranking); err == nil {
			s.Metric = m
		}
	}
	return s
}

func (h *Handlers) pageData(sel dashboard.Selection, settings dashboard.Settings) pageData {
	v := dashboard.Build(h.cache.Get(), sel, settings)
	input := sel
	if input.Deputado == dashboard.AllSentinel {
		input.Deputado = ""
	}
	if input.Area == dashboard.AllSentinel {
		input.Area = ""
	}
	if input.GrupoDespesa == dashboard.AllSentinel {
		input.GrupoDespesa = ""
	}

	signalSel := v.Selection
	if settings.Mode == dashboard.ModeContains {
		signalSel = input
	}
	signals, _ := json.Marshal(panelSignals{
		Deputado: signalSel.Deputado,
		Area:     signalSel.Area,
		Grupo:    signalSel.GrupoDespesa,
		Modo:     settings.Mode.String(),
		Ranking:  settings.Metric.String(),
		Snapshot: v.SnapshotID,
	})

	q := url.Values{}
	q.Set(paramDeputado, v.Selection.Deputado)
	q.Set(paramArea, v.Selection.Area)
	q.Set(paramGrupo, v.Selection.GrupoDespesa)
	q.Set(paramModo, settings.Mode.String())
	q.Set(paramRanking, settings.Metric.String())
	q.Set("v", v.SnapshotID)
	qs := q.Encode()

	return pageData{
		Title:           h.title,
		DatastarURL:     DatastarURL,
		View:            v,
		Input:           input,
		Contains:        settings.Mode == dashboard.ModeContains,
		Metric:          settings.Metric.String(),
		SignalsJSON:     string(signals),
		AreaChartURL:    template.URL("/charts/area.svg?" + qs),
		RankingChartURL: template.URL("/charts/ranking.svg?" + qs),
		ExportURL:       template.URL("/export.xlsx?" + qs),
	}
}
