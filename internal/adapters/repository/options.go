package repository

import (
	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMovies preloads the store. Later movies with an id already present are
// skipped.
func WithMovies(movies []model.Movie) Option {
	return func(s *MemoryStore) {
		s.seed = append(s.seed, movies...)
	}
}

// WithLogger sets the logger used to report skipped seed records.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSizeObserver registers fn to be called with the movie count after every
// mutation.
func WithSizeObserver(fn func(n int)) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.observe = fn
		}
	}
}
