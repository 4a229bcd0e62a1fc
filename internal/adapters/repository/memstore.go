package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/pkg/logger"
)

// MemoryStore is an ordered, in-memory Store. Lookups are linear scans.
type MemoryStore struct {
	mu     sync.RWMutex
	movies []model.Movie

	seed    []model.Movie
	logger  logger.Logger
	observe func(n int)
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store and loads any movies given with WithMovies.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		logger:  logger.Nop(),
		observe: func(int) {},
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, m := range s.seed {
		if err := s.insertLocked(m); err != nil {
			s.logger.Warn(ctx, "skipping seed movie", logger.String("id", m.ID), logger.Error(err))
		}
	}
	s.seed = nil
	s.observe(len(s.movies))
	return s
}

// List returns the movies matching f in insertion order.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		if f.Genre != "" && !m.HasGenre(f.Genre) {
			continue
		}
		out = append(out, m.Clone())
	}
	return out, nil
}

// Get returns the movie with id.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Movie{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return s.movies[i].Clone(), nil
}

// Insert appends m.
func (s *MemoryStore) Insert(_ context.Context, m model.Movie) error {
	s.mu.Lock()
	err := s.insertLocked(m)
	n := len(s.movies)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.observe(n)
	return nil
}

// Update merges p onto the movie with id.
func (s *MemoryStore) Update(_ context.Context, id string, p model.MoviePatch) (model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.Movie{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	s.movies[i] = s.movies[i].Apply(p)
	return s.movies[i].Clone(), nil
}

// Delete removes the first movie with id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	s.movies = slices.Delete(s.movies, i, i+1)
	n := len(s.movies)
	s.mu.Unlock()

	s.observe(n)
	return nil
}

// Count returns the number of movies stored.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}

func (s *MemoryStore) insertLocked(m model.Movie) error {
	if m.ID == "" {
		return fmt.Errorf("insert: %w: empty id", ErrInvalidSeed)
	}
	if s.indexLocked(m.ID) >= 0 {
		return fmt.Errorf("insert %q: %w", m.ID, ErrDuplicateID)
	}
	s.movies = append(s.movies, m.Clone())
	return nil
}

func (s *MemoryStore) indexLocked(id string) int {
	for i := range s.movies {
		if s.movies[i].ID == id {
			return i
		}
	}
	return -1
}
