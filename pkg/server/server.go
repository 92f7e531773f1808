// Package server exposes a live engine over HTTP for inspection.
//
// The API is read-mostly: clients query the content extent, elements in a
// rectangle, element positions and header targets, and drive the engine
// by posting viewport changes, focus changes and animation ticks.
//
//	GET    /extent
//	GET    /elements?x=&y=&w=&h=
//	GET    /positions/{kind}/{section}/{item}
//	GET    /headers
//	GET    /snapshot?format=json|svg|png
//	POST   /viewport   {"x":0,"y":0,"width":300,"height":100}
//	POST   /tick?n=1
//	POST   /settle
//	POST   /focus      {"section":0,"item":1,"scale":1.2}
//	DELETE /focus
//
// Engines are single-threaded; the server serialises every request on one
// mutex, shared with [Server.Animate].
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/render"
)

// Server serves one engine.
type Server struct {
	mu      sync.Mutex
	eng     *engine.Engine
	name    string
	labeler render.Labeler
	logger  *log.Logger
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithLabeler sets how elements are named in responses.
func WithLabeler(l render.Labeler) Option { return func(s *Server) { s.labeler = l } }

// WithName records the scenario name reported in snapshots.
func WithName(name string) Option { return func(s *Server) { s.name = name } }

// New creates a server for e. The engine should already be prepared.
func New(e *engine.Engine, opts ...Option) *Server {
	s := &Server{
		eng:     e,
		labeler: attach.ElementKey.String,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Get("/extent", s.handleExtent)
	r.Get("/elements", s.handleElements)
	r.Get("/positions/{kind}/{section}/{item}", s.handlePosition)
	r.Get("/headers", s.handleHeaders)
	r.Get("/snapshot", s.handleSnapshot)
	r.Post("/viewport", s.handleViewport)
	r.Post("/tick", s.handleTick)
	r.Post("/settle", s.handleSettle)
	r.Route("/focus", func(r chi.Router) {
		r.Post("/", s.handleFocus)
		r.Delete("/", s.handleClearFocus)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Animate ticks the engine at the spring frame rate until ctx is done.
// Ticks are skipped while everything is at rest.
func (s *Server) Animate(ctx context.Context) error {
	fps := s.eng.Config().Spring.FPS
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.mu.Lock()
			if !s.eng.Settled() {
				s.eng.Tick()
			}
			s.mu.Unlock()
		}
	}
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
