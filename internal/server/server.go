package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/aithlete/aithlete/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Coach generates plans and advice. *coach.Service satisfies it.
type Coach interface {
	GeneratePlan(ctx context.Context, req models.PlanRequest) (*coach.GeneratedPlan, error)
	Ask(ctx context.Context, question string) (string, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	coach    Coach
	renderer *render.Renderer
	store    storage.Store
	pages    *pages
	static   fs.FS
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. webFS must contain
// templates/ and static/. An empty apiKey leaves /api/v1 open.
func New(c Coach, renderer *render.Renderer, store storage.Store, webFS fs.FS, apiKey string, log *slog.Logger) (*Server, error) {
	p, err := loadPages(webFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	static, err := fs.Sub(webFS, "static")
	if err != nil {
		return nil, fmt.Errorf("loading static assets: %w", err)
	}
	if store == nil {
		store = storage.Nop{}
	}

	s := &Server{
		coach:    c,
		renderer: renderer,
		store:    store,
		pages:    p,
		static:   static,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.static)))

	// Form pages
	s.router.Get("/", s.handleIndex)
	s.router.Post("/plan", s.handlePlanForm)
	s.router.Post("/plan/pdf", s.handlePlanPDFForm)
	s.router.Post("/plan/xlsx", s.handlePlanXLSXForm)
	s.router.Get("/advice", s.handleAdvicePage)
	s.router.Post("/advice", s.handleAdviceForm)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Post("/plans", s.handleGeneratePlan)
		r.Post("/plans/pdf", s.handleRenderPDF)
		r.Post("/plans/xlsx", s.handleRenderXLSX)
		r.Post("/advice", s.handleAdvice)
		r.Get("/logs", s.handleGenerationLogs)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
