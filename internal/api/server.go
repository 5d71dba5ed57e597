package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/echomate/internal/events"
	"github.com/MikeSquared-Agency/echomate/internal/persona"
)

type Config struct {
	Port           int
	APIToken       string
	Provider       string
	MaxUploadBytes int64
}

type Server struct {
	router   *chi.Mux
	http     *http.Server
	cfg      Config
	gen      persona.Generator
	sessions *registry
	events   *events.Emitter
	logger   *slog.Logger
}

// NewServer wires the persona routes. emitter may be nil.
func NewServer(cfg Config, gen persona.Generator, emitter *events.Emitter, logger *slog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s := &Server{
		router:   router,
		http:     httpSrv,
		cfg:      cfg,
		gen:      gen,
		sessions: newRegistry(),
		events:   emitter,
		logger:   logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/echomate/status", s.status)

	router.Route("/api/v1/personas", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(cfg.APIToken))
		r.Post("/", s.createPersona)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getPersona)
			r.Put("/", s.recreatePersona)
			r.Delete("/", s.deletePersona)
			r.Post("/turns", s.submitTurn)
			r.Post("/reset", s.resetPersona)
		})
	})

	return s
}

// Start blocks serving HTTP. After Shutdown it returns http.ErrServerClosed,
// including when Shutdown ran first.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr, "provider", s.cfg.Provider)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":    "echomate",
		"provider": s.cfg.Provider,
		"sessions": s.sessions.len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
