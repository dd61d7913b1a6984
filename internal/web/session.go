package web

import (
	"net/http"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/logger"
)

// SessionName is the cookie holding the last filter selection.
const SessionName = "painel"

// restore fills sel and settings from the session, when one exists.
func (h *Handlers) restore(r *http.Request, sel dashboard.Selection, settings dashboard.Settings) (dashboard.Selection, dashboard.Settings) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil || session.IsNew {
		return sel, settings
	}
	str := func(key string) string {
		v, _ := session.Values[key].(string)
		return v
	}
	sel = dashboard.Selection{
		Deputado:     str(paramDeputado),
		Area:         str(paramArea),
		GrupoDespesa: str(paramGrupo),
	}
	return sel, h.withOverrides(str(paramModo), str(paramRanking))
}

// remember stores the selection in the session cookie. It must run before
// anything is written to w.
func (h *Handlers) remember(w http.ResponseWriter, r *http.Request, sel dashboard.Selection, settings dashboard.Settings) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil && session == nil {
		return
	}
	n := sel.Normalized()
	session.Values[paramDeputado] = n.Deputado
	session.Values[paramArea] = n.Area
	session.Values[paramGrupo] = n.GrupoDespesa
	session.Values[paramModo] = settings.Mode.String()
	session.Values[paramRanking] = settings.Metric.String()
	if err := session.Save(r, w); err != nil {
		l := logger.FromContext(r.Context())
		l.Debug().Err(err).Msg("session not saved")
	}
}
