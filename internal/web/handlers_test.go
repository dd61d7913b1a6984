package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/emendas"
	"github.com/KaramelBytes/painel-emendas/internal/export"
	"github.com/KaramelBytes/painel-emendas/internal/logger"
	"github.com/KaramelBytes/painel-emendas/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSource(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := make([]any, len(emendas.Columns))
	for i, c := range emendas.Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, r := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", ref, &r))
	}
	p := filepath.Join(t.TempDir(), "emendas.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func sampleRows() [][]any {
	return [][]any{
		{"Dep. Ana", "001", "Reforma", "Saúde", "Natal", 3, "Hospital", 1000, "Sim", true},
		{"Dep. Bruno", "002", "Escola", "Educação", "Mossoró", 4, "Prefeitura", 500, "Não", false},
		{"Dep. Ana", "003", "Ponte", "Infraestrutura", "Caicó", 4, "Prefeitura", 250.5, "Não", false},
	}
}

func newTestServer(t *testing.T, path string) *Server {
	t.Helper()
	cache := emendas.NewCache(path, sheet.Options{}, zerolog.Nop())
	return NewServer(Config{
		Cache:         cache,
		Settings:      dashboard.DefaultSettings(),
		Title:         "Painel de Emendas Parlamentares 2025",
		SessionSecret: "test-secret-test-secret-test-sec",
		Logger:        zerolog.Nop(),
	})
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPage(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	h := srv.Handler()

	tests := []struct {
		name     string
		target   string
		wantBody []string
		notBody  []string
	}{
		{
			name:   "unfiltered",
			target: "/",
			wantBody: []string{
				"<!doctype html>",
				"<title>Painel de Emendas Parlamentares 2025</title>",
				"data-init",
				"/updates",
				`id="painel"`,
				`id="filtros"`,
				"R$ 1.750,50",
				"Distribuição por Área",
				"Distribuição por Grupo de Despesa",
				"Dep. Bruno",
			},
		},
		{
			name:     "filtered by deputado",
			target:   "/?deputado=" + url.QueryEscape("Dep. Ana"),
			wantBody: []string{"R$ 1.250,50", "/charts/area.svg?"},
			notBody:  []string{"<td>Dep. Bruno</td>"},
		},
		{
			name:     "contains mode renders text inputs",
			target:   "/?modo=contains&deputado=ana",
			wantBody: []string{`name="deputado" value="ana"`, "R$ 1.250,50"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want, "response should contain %q", want)
			}
			for _, not := range tt.notBody {
				assert.NotContains(t, body, not)
			}
		})
	}
}

func TestPageRemembersSelection(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	h := srv.Handler()

	first := get(t, h, "/?area="+url.QueryEscape("Educação"))
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies, "selection should be stored in a cookie")

	again := get(t, h, "/", cookies...)
	assert.Contains(t, again.Body.String(), "R$ 500,00")
	assert.NotContains(t, again.Body.String(), "<td>Dep. Ana</td>")

	fresh := get(t, h, "/")
	assert.Contains(t, fresh.Body.String(), "R$ 1.750,50")
}

func TestPageLoadFailure(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "ausente.xlsx"))
	rec := get(t, srv.Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `class="alerta"`)
	assert.Contains(t, body, "ausente.xlsx não encontrado")
	assert.Contains(t, body, "R$ 0,00")
}

func TestPanelSSE(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	signals := `{"deputado":"Dep. Bruno","area":"Todos","grupo":"Todos","modo":"exact","ranking":"quantidade"}`
	rec := get(t, srv.Handler(), "/painel?datastar="+url.QueryEscape(signals))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `id="painel"`)
	assert.Contains(t, body, `id="filtros"`)
	assert.Contains(t, body, "R$ 500,00")
	assert.Contains(t, body, "Deputados por Quantidade de Emendas")
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestUpdatesPushesSnapshot(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	h := srv.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/updates", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return srv.Notifier().Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	srv.Notifier().Broadcast("snap-reloaded")
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, "snap-reloaded")
	assert.Equal(t, 0, srv.Notifier().Count())
}

func TestCharts(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	h := srv.Handler()
	for _, target := range []string{"/charts/area.svg", "/charts/ranking.svg?ranking=quantidade", "/charts/area.svg?area=Nada"} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"), target)
		assert.True(t, strings.Contains(rec.Body.String(), "<svg"), target)
	}
	empty := get(t, h, "/charts/area.svg?area=Nada")
	assert.Contains(t, empty.Body.String(), "Sem dados")
}

func TestRankingChartSingleDeputado(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	h := srv.Handler()
	for _, metric := range []string{"valor", "quantidade"} {
		target := "/charts/ranking.svg?deputado=" + url.QueryEscape("Dep. Ana") + "&ranking=" + metric
		rec := get(t, h, target)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "<svg", target)
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	rec := get(t, srv.Handler(), "/export.xlsx?deputado="+url.QueryEscape("Dep. Ana"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.DetailSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, writeSource(t, sampleRows()))
	rec := get(t, srv.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["records"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	broken := newTestServer(t, filepath.Join(t.TempDir(), "x.xlsx"))
	rec = get(t, broken.Handler(), "/healthz")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}

func TestRecovery(t *testing.T) {
	h := Recovery(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := get(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDReused(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	h := RequestID(Logger(base)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		l := logger.FromContext(r.Context())
		l.Debug().Msg("inside handler")
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"message":"inside handler"`)
	assert.Equal(t, 2, strings.Count(out, `"request_id":"req-42"`))
}

func TestReloadBroadcastsNewSnapshot(t *testing.T) {
	path := writeSource(t, sampleRows())
	srv := newTestServer(t, path)
	before := srv.cache.Get().ID

	ch := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(ch)
	srv.reload()

	select {
	case id := <-ch:
		assert.NotEqual(t, before, id)
		assert.Equal(t, srv.cache.Get().ID, id)
	case <-time.After(time.Second):
		t.Fatal("reload did not broadcast")
	}
}
