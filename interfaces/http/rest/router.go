// Package rest assembles the HTTP router for the planning canvas API.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sitecanvas-backend/application/ports"
	"sitecanvas-backend/application/services"
	"sitecanvas-backend/interfaces/http/rest/handlers"
	"sitecanvas-backend/interfaces/http/rest/middleware"
	"sitecanvas-backend/pkg/observability"
)

// Router creates and configures the HTTP router.
type Router struct {
	canvas     *services.CanvasService
	generation *services.GenerationService
	provider   ports.AIProvider
	metrics    *observability.Collector
	logger     *zap.Logger
	enableCORS bool
}

// NewRouter creates a new router instance.
func NewRouter(
	canvas *services.CanvasService,
	generation *services.GenerationService,
	provider ports.AIProvider,
	metrics *observability.Collector,
	logger *zap.Logger,
	enableCORS bool,
) *Router {
	return &Router{
		canvas:     canvas,
		generation: generation,
		provider:   provider,
		metrics:    metrics,
		logger:     logger,
		enableCORS: enableCORS,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))
	router.Use(middleware.Tracing("sitecanvas-backend"))
	router.Use(chimiddleware.Timeout(120 * time.Second))
	if rt.enableCORS {
		router.Use(middleware.CORS())
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Handle("/metrics", rt.metrics.Handler())

	nodeHandler := handlers.NewNodeHandler(rt.canvas, rt.metrics, rt.logger)
	edgeHandler := handlers.NewEdgeHandler(rt.canvas, rt.metrics, rt.logger)
	graphHandler := handlers.NewGraphHandler(rt.canvas, rt.logger)
	generationHandler := handlers.NewGenerationHandler(rt.generation, rt.metrics, rt.logger)

	router.Route("/api/v1/projects/{projectID}", func(r chi.Router) {
		r.Get("/graph", graphHandler.GetGraph)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", nodeHandler.CreateNode)
			r.Route("/{nodeID}", func(r chi.Router) {
				r.Get("/", nodeHandler.GetNode)
				r.Patch("/", nodeHandler.UpdateNode)
				r.Delete("/", nodeHandler.DeleteNode)
				r.Put("/position", nodeHandler.MoveNode)
				r.Get("/context", nodeHandler.GetContext)
				r.With(middleware.CircuitBreaker("generation", rt.logger)).
					Post("/generate", generationHandler.Generate)
				r.Get("/records", generationHandler.ListRecords)
			})
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", edgeHandler.CreateEdge)
			r.Delete("/{edgeID}", edgeHandler.DeleteEdge)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports degraded when the AI provider is unavailable; the
// canvas endpoints keep working, generation would fail fast.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.provider != nil && !rt.provider.IsAvailable() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"degraded","generation":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
