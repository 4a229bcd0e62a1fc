// Package service implements the movie catalogue use cases behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/movies/internal/adapters/repository"
	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/pkg/logger"
	"github.com/okian/movies/pkg/metrics"
)

const maxIDAttempts = 3

// Service owns the catalogue store and exposes list/get/create/update/delete.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	seed     []model.Movie
	seedFile string
	newID    func() string

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects the catalogue store. Seeding is skipped for injected stores.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSeed replaces the embedded seed with movies.
func WithSeed(movies []model.Movie) Option {
	return func(s *Service) {
		s.seed = movies
	}
}

// WithSeedFile loads the seed from a JSON file at Start.
func WithSeedFile(path string) Option {
	return func(s *Service) {
		s.seedFile = path
	}
}

// WithIDGenerator overrides UUID v4 id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the seed (unless a store was injected) and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	if s.store == nil {
		seed, err := s.loadSeed()
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		s.store = repository.NewMemoryStore(ctx,
			repository.WithMovies(seed),
			repository.WithLogger(s.logger.Named("repository")),
			repository.WithSizeObserver(metrics.UpdateCatalogueSize),
		)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "movie service started", logger.Int("movies", s.store.Count(ctx)))
	return nil
}

func (s *Service) loadSeed() ([]model.Movie, error) {
	switch {
	case s.seed != nil:
		return s.seed, nil
	case s.seedFile != "":
		return repository.LoadSeedFile(s.seedFile)
	default:
		return repository.DefaultSeed()
	}
}

// Stop marks the service as stopped. The catalogue is kept in memory.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "movie service stopped")
}

func (s *Service) ready() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// List returns every movie, or only those with genre when it is non-empty.
func (s *Service) List(ctx context.Context, genre string) ([]model.Movie, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, repository.Filter{Genre: genre})
}

// Get returns the movie with id.
func (s *Service) Get(ctx context.Context, id string) (model.Movie, error) {
	store, err := s.ready()
	if err != nil {
		return model.Movie{}, err
	}
	m, err := store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordLookupMiss("get")
	}
	return m, err
}

// Create stores a new movie under a fresh id and returns it.
func (s *Service) Create(ctx context.Context, in model.MovieInput) (model.Movie, error) {
	store, err := s.ready()
	if err != nil {
		return model.Movie{}, err
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		m := model.NewMovie(s.newID(), in)
		err = store.Insert(ctx, m)
		if err == nil {
			metrics.RecordMovieCreated()
			s.logger.Debug(ctx, "movie created", logger.String("id", m.ID), logger.String("title", m.Title))
			return m, nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) {
			return model.Movie{}, err
		}
		s.logger.Warn(ctx, "generated id collided; retrying", logger.String("id", m.ID), logger.Int("attempt", attempt))
	}
	return model.Movie{}, fmt.Errorf("%w: %w", ErrIDExhausted, err)
}

// Update merges p onto the movie with id and returns the result.
func (s *Service) Update(ctx context.Context, id string, p model.MoviePatch) (model.Movie, error) {
	store, err := s.ready()
	if err != nil {
		return model.Movie{}, err
	}
	m, err := store.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordLookupMiss("update")
		}
		return model.Movie{}, err
	}
	metrics.RecordMovieUpdated()
	s.logger.Debug(ctx, "movie updated", logger.String("id", id))
	return m, nil
}

// Delete removes the movie with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	store, err := s.ready()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordLookupMiss("delete")
		}
		return err
	}
	metrics.RecordMovieDeleted()
	s.logger.Debug(ctx, "movie deleted", logger.String("id", id))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started": s.started,
	}
	if s.started {
		n := s.store.Count(context.Background())
		stats["movies"] = n
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
		stats["genres"] = model.Genres()
		metrics.UpdateCatalogueSize(n)
	}
	return stats
}
