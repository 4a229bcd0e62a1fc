// Package api declares the HTTP contract of the movies service and its route table.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/pkg/logger"
	"github.com/okian/movies/pkg/metrics"
)

// Dependencies required by the movie handlers.
type Dependencies interface {
	List(ctx context.Context, genre string) ([]model.Movie, error)
	Get(ctx context.Context, id string) (model.Movie, error)
	Create(ctx context.Context, in model.MovieInput) (model.Movie, error)
	Update(ctx context.Context, id string, p model.MoviePatch) (model.Movie, error)
	Delete(ctx context.Context, id string) error
}

// Server wires HTTP routes for the movies API.
type Server struct {
	moviesHandler *MoviesHandler
	rootHandler   *RootHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	cors          *CORS
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := defaultServerOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Server{
		moviesHandler: NewMoviesHandler(deps, o.maxBodyBytes, o.logger),
		rootHandler:   NewRootHandler(),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		cors:          NewCORS(o.allowedOrigins, o.logger),
		logger:        o.logger,
	}
}

// Register attaches all routes to router.
func (s *Server) Register(_ context.Context, router *httprouter.Router) {
	router.GET("/", MetricsMiddleware(s.rootHandler.HandleRoot, "/"))

	router.GET("/movies", MetricsMiddleware(s.moviesHandler.HandleList, "/movies"))
	router.POST("/movies", MetricsMiddleware(s.moviesHandler.HandleCreate, "/movies"))

	router.GET("/movies/:id", MetricsMiddleware(s.moviesHandler.HandleGet, "/movies/:id"))
	router.PATCH("/movies/:id", MetricsMiddleware(s.moviesHandler.HandleUpdate, "/movies/:id"))
	router.DELETE("/movies/:id", MetricsMiddleware(s.moviesHandler.HandleDelete, "/movies/:id"))
	router.OPTIONS("/movies/:id", MetricsMiddleware(s.cors.HandlePreflight, "/movies/:id"))

	router.GET("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "/healthz"))
	router.GET("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "/stats"))
	router.Handler(http.MethodGet, "/metrics", metricsHandler())

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.logger.Error(r.Context(), "panic while serving request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Any("panic", v),
		)
		metrics.RecordError(r.URL.Path, r.Method, "panic", "high")
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// RegisterFunc attaches extra routes next to the API routes.
type RegisterFunc func(ctx context.Context, router *httprouter.Router)

// Handler builds the router, registers every route plus extra and wraps it
// with the CORS and request logging middleware.
func (s *Server) Handler(ctx context.Context, extra ...RegisterFunc) http.Handler {
	router := httprouter.New()
	s.Register(ctx, router)
	for _, register := range extra {
		register(ctx, router)
	}
	return s.cors.Middleware(LoggingMiddleware(s.logger, router))
}

// Response bodies.
type (
	messageResponse struct {
		Message string `json:"message"`
	}
	errorResponse struct {
		Error string `json:"error"`
	}
	issuesResponse struct {
		Error any `json:"error"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
