package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/marathon-booth/internal/blobstore"
	"github.com/kozaktomas/marathon-booth/internal/camera"
	"github.com/kozaktomas/marathon-booth/internal/capture"
	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/constants"
	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/faceanalysis"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/web/handlers"
	"github.com/kozaktomas/marathon-booth/internal/web/middleware"
)

// Deps are the collaborators the server exposes over HTTP. Blobs and Analyzer
// may be nil.
type Deps struct {
	Store    database.Store
	Blobs    blobstore.Store
	Camera   camera.Provider
	Analyzer faceanalysis.Analyzer
	Catalog  *messages.Catalog
}

// Server represents the web server
type Server struct {
	config         *config.Config
	deps           Deps
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
	drafts         *handlers.DraftManager
	booth          *capture.Manager

	stopSweep chan struct{}
	stopOnce  sync.Once
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, deps Deps) *Server {
	if deps.Catalog == nil {
		deps.Catalog = messages.Default()
	}

	r := chi.NewRouter()

	capDeps := capture.Deps{Store: deps.Store, Camera: deps.Camera, Analyzer: deps.Analyzer, Blobs: deps.Blobs}

	s := &Server{
		config:         cfg,
		deps:           deps,
		router:         r,
		sessionManager: middleware.NewSessionManager(cfg.Web.SessionSecret),
		drafts:         handlers.NewDraftManager(deps.Catalog, deps.Store, nil),
		booth: capture.NewManager(capDeps, capture.Options{
			CountdownTicks:  cfg.Capture.CountdownTicks,
			TickInterval:    cfg.Capture.TickInterval,
			ProcessingDelay: cfg.Capture.ProcessingDelay,
		}),
		stopSweep: make(chan struct{}),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	s.setupRoutes()

	go s.sweepLoop(constants.SessionSweepInterval)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// sweepLoop drops idle registration drafts and closes idle booth sessions.
func (s *Server) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			if n := s.drafts.Sweep(constants.DraftTTL); n > 0 {
				log.Printf("Dropped %d idle registration drafts", n)
			}
			if n := s.booth.Sweep(constants.BoothSessionTTL); n > 0 {
				log.Printf("Closed %d idle booth sessions", n)
			}
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and releases every booth camera
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	s.stopOnce.Do(func() { close(s.stopSweep) })
	s.sessionManager.Stop()

	// Closing booth sessions ends their event streams, so the HTTP shutdown
	// does not wait on them.
	s.booth.CloseAll()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
