package web

import (
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/marathon-booth/internal/blobstore"
	"github.com/kozaktomas/marathon-booth/internal/web/handlers"
	"github.com/kozaktomas/marathon-booth/internal/web/middleware"
	"github.com/kozaktomas/marathon-booth/internal/web/static"
)

func (s *Server) setupRoutes() {
	cfg := s.config
	staffOnly := middleware.RequireStaff(s.sessionManager, cfg.Web.StaffPassword != "")
	limiter := middleware.NewRateLimiter(cfg.Web.RegisterRate, cfg.Web.RegisterBurst)

	// Create handlers
	authHandler := handlers.NewAuthHandler(cfg, s.sessionManager)
	runnersHandler := handlers.NewRunnersHandler(s.deps.Store, s.deps.Catalog, nil)
	registrationsHandler := handlers.NewRegistrationsHandler(s.drafts)
	messagesHandler := handlers.NewMessagesHandler(s.deps.Catalog)
	boothHandler := handlers.NewBoothHandler(s.booth)
	uploadHandler := handlers.NewUploadHandler(s.deps.Blobs)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		r.Get("/messages", messagesHandler.Locales)
		r.Get("/messages/{locale}", messagesHandler.Table)

		// Public registration, rate limited per client IP
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/runners", runnersHandler.Create)
			r.Get("/runners/{id}", runnersHandler.Get)

			r.Post("/registrations", registrationsHandler.Create)
			r.Get("/registrations/{id}", registrationsHandler.Get)
			r.Post("/registrations/{id}/confirm", registrationsHandler.Confirm)
			r.Post("/registrations/{id}/edit", registrationsHandler.Edit)
			r.Post("/registrations/{id}/submit", registrationsHandler.Submit)
			r.Post("/registrations/{id}/restart", registrationsHandler.Restart)
		})

		// Staff routes
		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Get("/runners", runnersHandler.List)
			r.Post("/upload", uploadHandler.Upload)

			r.Post("/booth/sessions", boothHandler.Create)
			r.Get("/booth/sessions/{id}", boothHandler.Get)
			r.Delete("/booth/sessions/{id}", boothHandler.Delete)
			r.Get("/booth/sessions/{id}/events", boothHandler.Events)
			r.Post("/booth/sessions/{id}/search", boothHandler.Search)
			r.Get("/booth/sessions/{id}/devices", boothHandler.Devices)
			r.Post("/booth/sessions/{id}/camera", boothHandler.OpenCamera)
			r.Delete("/booth/sessions/{id}/camera", boothHandler.StopCamera)
			r.Post("/booth/sessions/{id}/capture", boothHandler.Capture)
			r.Get("/booth/sessions/{id}/still", boothHandler.Still)
			r.Post("/booth/sessions/{id}/retake", boothHandler.Retake)
			r.Post("/booth/sessions/{id}/new-search", boothHandler.NewSearch)
			r.Post("/booth/sessions/{id}/publish", boothHandler.Publish)
		})
	})

	// Published photos, when stored on local disk
	if local, ok := s.deps.Blobs.(*blobstore.LocalStore); ok {
		s.router.Handle(blobstore.LocalPathPrefix+"*", local.Handler())
	}

	// Serve static files for the frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the embedded frontend, falling back to index.html for
// client-side routes.
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fsys := static.Files()

	name, ok := static.Lookup(fsys, r.URL.Path)
	if !ok {
		if strings.HasPrefix(r.URL.Path, "/assets/") || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		name = static.IndexFile
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if strings.HasPrefix(name, "assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
