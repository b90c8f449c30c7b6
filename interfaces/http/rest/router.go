package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindgraph-backend/application/session"
	"mindgraph-backend/infrastructure/config"
	"mindgraph-backend/interfaces/http/rest/handlers"
	"mindgraph-backend/interfaces/http/rest/middleware"
	"mindgraph-backend/interfaces/websocket"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg      *config.Config
	sessions *session.Manager
	hub      *websocket.Hub
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	sessions *session.Manager,
	hub *websocket.Hub,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:      cfg,
		sessions: sessions,
		hub:      hub,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			sessionHandler := handlers.NewSessionHandler(rt.sessions, rt.hub, rt.logger)
			graphHandler := handlers.NewGraphHandler(rt.sessions, rt.logger)

			r.Post("/", sessionHandler.CreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Delete("/", sessionHandler.CloseSession)

				r.Post("/deltas", sessionHandler.SubmitDelta)
				r.Post("/refinements", sessionHandler.SubmitRefinement)
				r.Post("/finalize", sessionHandler.Finalize)
				r.Post("/merge", sessionHandler.Merge)
				r.Post("/utterances", sessionHandler.AppendUtterance)

				r.Get("/graph", graphHandler.GetGraph)
				r.Put("/graph", graphHandler.ReplaceGraph)
				r.Delete("/graph", graphHandler.ClearGraph)
				r.Delete("/nodes/{nodeID}", graphHandler.RemoveNode)
				r.Delete("/edges/{edgeID}", graphHandler.RemoveEdge)
			})
		})
	})

	// WebSocket snapshot stream
	router.Get("/ws/sessions/{sessionID}", websocket.ServeWS(rt.hub, rt.sessions, rt.logger))

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
