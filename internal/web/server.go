// Package web serves the interactive dashboard over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/emendas"
	"github.com/KaramelBytes/painel-emendas/internal/web/notifier"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Server is the dashboard HTTP server.
type Server struct {
	cache        *emendas.Cache
	settings     dashboard.Settings
	title        string
	addr         string
	watch        bool
	sessionStore *sessions.CookieStore
	notifier     *notifier.Notifier
	log          zerolog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Cache         *emendas.Cache
	Settings      dashboard.Settings
	Title         string
	Addr          string
	Watch         bool
	SessionSecret string
	Logger        zerolog.Logger
}

// NewServer creates a server. An empty SessionSecret gets a random key, so
// remembered filters do not survive a restart.
func NewServer(cfg Config) *Server {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		cfg.Logger.Warn().Msg("session_secret not set; using a random key")
	}
	sessionStore := sessions.NewCookieStore([]byte(secret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cache:        cfg.Cache,
		settings:     cfg.Settings,
		title:        cfg.Title,
		addr:         cfg.Addr,
		watch:        cfg.Watch,
		sessionStore: sessionStore,
		notifier:     notifier.New(),
		log:          cfg.Logger,
	}
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier { return s.notifier }

// Handler builds the router with middleware and all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		RequestID,
		Logger(s.log),
		Recovery(s.log),
		middleware.Compress(5),
	)

	h := NewHandlers(s.cache, s.settings, s.title, s.sessionStore, s.notifier)
	r.Get("/", h.Page)
	r.Get("/painel", h.Panel)
	r.Get("/updates", h.Updates)
	r.Get("/charts/area.svg", h.AreaChart)
	r.Get("/charts/ranking.svg", h.RankingChart)
	r.Get("/export.xlsx", h.Export)
	r.Get("/healthz", h.Health)
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Load once before accepting requests.
	if snap := s.cache.Get(); snap.Failed() {
		s.log.Warn().Str("source", s.cache.Path()).Msg(snap.Message())
	}

	if s.watch {
		eg.Go(func() error {
			err := Watch(egctx, s.cache.Path(), s.reload, s.log)
			if err != nil {
				s.log.Error().Err(err).Msg("file watcher stopped")
			}
			return nil
		})
	}

	eg.Go(func() error {
		s.log.Info().Str("addr", "http://"+displayAddr(s.addr)).Msg("starting dashboard server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Debug().Msg("shutting down dashboard server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// reload drops the cached snapshot and tells connected clients.
func (s *Server) reload() {
	s.cache.Invalidate()
	snap := s.cache.Get()
	s.log.Info().Str("snapshot", snap.ID).Bool("failed", snap.Failed()).Msg("source changed")
	s.notifier.Broadcast(snap.ID)
}

func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host != "" {
		return addr
	}
	return "localhost:" + port
}
