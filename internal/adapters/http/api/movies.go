package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/okian/movies/internal/adapters/repository"
	service "github.com/okian/movies/internal/app"
	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/internal/domain/validation"
	"github.com/okian/movies/pkg/logger"
	"github.com/okian/movies/pkg/metrics"
)

// MoviesHandler serves the /movies collection and item routes.
type MoviesHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewMoviesHandler creates a new movies handler.
func NewMoviesHandler(deps Dependencies, maxBodyBytes int64, l logger.Logger) *MoviesHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	if l == nil {
		l = logger.Nop()
	}
	return &MoviesHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleList handles GET /movies with an optional ?genre= filter.
func (h *MoviesHandler) HandleList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	movies, err := h.deps.List(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		h.writeFailure(r.Context(), w, "list", err)
		return
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	writeJSON(w, http.StatusOK, movies)
}

// HandleGet handles GET /movies/:id.
func (h *MoviesHandler) HandleGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	m, err := h.deps.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeFailure(r.Context(), w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleCreate handles POST /movies.
func (h *MoviesHandler) HandleCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw, ok := h.decode(w, r, "create", false)
	if !ok {
		return
	}
	res := validation.ValidateMovie(raw)
	if !res.OK() {
		h.writeIssues(w, "create", res.Issues())
		return
	}

	m, err := h.deps.Create(r.Context(), res.Data())
	if err != nil {
		h.writeFailure(r.Context(), w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleUpdate handles PATCH /movies/:id. The body is validated before the
// id is looked up, so an invalid body on an unknown id is a 400. An empty
// body is an empty patch.
func (h *MoviesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw, ok := h.decode(w, r, "update", true)
	if !ok {
		return
	}
	res := validation.ValidatePartialMovie(raw)
	if !res.OK() {
		h.writeIssues(w, "update", res.Issues())
		return
	}

	m, err := h.deps.Update(r.Context(), ps.ByName("id"), res.Data())
	if err != nil {
		h.writeFailure(r.Context(), w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /movies/:id.
func (h *MoviesHandler) HandleDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.deps.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeFailure(r.Context(), w, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msgMovieDeleted})
}

func (h *MoviesHandler) decode(w http.ResponseWriter, r *http.Request, op string, allowEmpty bool) (map[string]any, bool) {
	raw, err := validation.Decode(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err == nil {
		return raw, true
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return map[string]any{}, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		metrics.RecordValidationFailure(op)
		writeError(w, http.StatusBadRequest, msgBodyTooLarge)
		return nil, false
	}
	h.writeIssues(w, op, []validation.Issue{validation.DecodeIssue(err)})
	return nil, false
}

func (h *MoviesHandler) writeIssues(w http.ResponseWriter, op string, issues []validation.Issue) {
	metrics.RecordValidationFailure(op)
	writeJSON(w, http.StatusBadRequest, issuesResponse{Error: issues})
}

// writeFailure maps service errors onto status codes. Unknown errors are
// logged and reported as 500 without leaking their text.
func (h *MoviesHandler) writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	var invalid *validation.Error
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, msgMovieNotFound)
	case errors.As(err, &invalid):
		h.writeIssues(w, op, invalid.Issues)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, msgServiceStopped)
	default:
		h.logger.Error(ctx, "movie operation failed", logger.String("operation", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}
