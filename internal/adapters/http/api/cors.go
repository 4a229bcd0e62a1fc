package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/movies/pkg/logger"
	"github.com/okian/movies/pkg/metrics"
)

const (
	preflightMethods = "GET,POST,PUT,PATCH,DELETE"
	preflightHeaders = "Content-Type"
)

// CORS applies the origin allow-list to every response.
type CORS struct {
	allowed map[string]struct{}
	logger  logger.Logger
}

// NewCORS creates the CORS policy for origins.
func NewCORS(origins []string, l logger.Logger) *CORS {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	if l == nil {
		l = logger.Nop()
	}
	return &CORS{allowed: allowed, logger: l}
}

// Accepts reports whether a request carrying origin may read the response.
// An empty origin is a same-origin request and is always accepted.
func (c *CORS) Accepts(origin string) bool {
	if origin == "" {
		return true
	}
	_, ok := c.allowed[origin]
	return ok
}

// Middleware echoes accepted origins in Access-Control-Allow-Origin and omits
// the header for everything else.
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")
		switch {
		case origin == "":
		case c.Accepts(origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
		default:
			metrics.RecordCORSRejected()
			c.logger.Debug(r.Context(), "origin not allowed", logger.String("origin", origin))
		}
		next.ServeHTTP(w, r)
	})
}

// HandlePreflight answers OPTIONS on the item route.
func (c *CORS) HandlePreflight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if c.Accepts(r.Header.Get("Origin")) {
		w.Header().Set("Access-Control-Allow-Methods", preflightMethods)
		w.Header().Set("Access-Control-Allow-Headers", preflightHeaders)
	}
	w.WriteHeader(http.StatusOK)
}
