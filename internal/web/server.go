// Package web hosts widgets over HTTP.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spacesedan/sentitable/internal/logging"
	"github.com/spacesedan/sentitable/internal/widget"
)

const maxBodyBytes = 10 << 20

type Server struct {
	registry   *widget.Registry
	classifier string
	healthy    *atomic.Bool
	router     *chi.Mux
	server     *http.Server
}

// NewServer wires the routes. healthy is owned by the caller's health monitor.
func NewServer(registry *widget.Registry, classifier string, healthy *atomic.Bool) *Server {
	s := &Server{
		registry:   registry,
		classifier: classifier,
		healthy:    healthy,
		router:     chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/widgets/{id}", s.handleWidgetPage)

	s.router.Route("/api/widgets", func(r chi.Router) {
		r.Post("/", s.handleCreateWidget)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteWidget)
			r.Put("/binding", s.handleSetBinding)
			r.Post("/resize", s.handleResize)
			r.Patch("/props", s.handleUpdateProps)
			r.Get("/table", s.handleTableJSON)
			r.Get("/table.txt", s.handleTableText)
		})
	})
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("[Server] Listening", slog.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logging.FromContext(r.Context()).Info("[Server] Request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)))
	})
}
