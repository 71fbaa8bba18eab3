package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/doc2voice/internal/api/handlers"
	"github.com/nikhilbhutani/doc2voice/internal/api/middleware"
	"github.com/nikhilbhutani/doc2voice/internal/config"
	"github.com/nikhilbhutani/doc2voice/internal/document"
	"github.com/nikhilbhutani/doc2voice/internal/jobs"
	"github.com/nikhilbhutani/doc2voice/internal/storage"
)

// Deps are the services the HTTP surface is built on. Jobs is nil when
// redis was not reachable at startup.
type Deps struct {
	Documents *document.Service
	Uploads   *storage.LocalStorage
	Audio     *storage.LocalStorage
	Jobs      *jobs.Store
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Deps
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	var redisCheck handlers.Pinger
	if rt.deps.Jobs != nil {
		redisCheck = rt.deps.Jobs
	}
	health := handlers.NewHealthHandler(redisCheck, map[string]string{
		"uploads": rt.deps.Uploads.Dir(),
		"audio":   rt.deps.Audio.Dir(),
	})
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	docH := handlers.NewDocumentHandler(rt.deps.Documents, rt.cfg.Server.MaxUploadBytes)
	r.Post("/upload", docH.Upload)

	audioH := handlers.NewAudioHandler(rt.deps.Audio)
	r.Get("/audio/{name}", audioH.Serve)

	jobH := handlers.NewJobHandler(rt.deps.Jobs)
	r.Get("/jobs/{id}", jobH.Get)

	return r
}
