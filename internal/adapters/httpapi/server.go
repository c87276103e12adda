package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"go.uber.org/zap"
)

// maxRequestBytes bounds request bodies
const maxRequestBytes = 10 << 20

// Server exposes the analyzer over HTTP
type Server struct {
	analyzer   *core.AnalyzerService
	backend    core.ClassificationService
	logger     *zap.Logger
	listenAddr string
	server     *http.Server
}

// NewServer creates the HTTP front end. backend serves /api/classify.
func NewServer(
	analyzer *core.AnalyzerService,
	backend core.ClassificationService,
	logger *zap.Logger,
	listenAddr string,
	readTimeout time.Duration,
	writeTimeout time.Duration,
) *Server {
	s := &Server{
		analyzer:   analyzer,
		backend:    backend,
		logger:     logger.Named("http"),
		listenAddr: listenAddr,
	}
	s.server = &http.Server{
		Addr:         listenAddr,
		Handler:      s.Routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handlePanel)
	r.Post("/", s.handlePanelSubmit)

	r.Route("/api", func(r chi.Router) {
		r.Post("/classify", s.handleClassify)
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// Start starts serving in the background
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
