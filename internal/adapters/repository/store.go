// Package repository holds the movie catalogue.
package repository

import (
	"context"

	"github.com/okian/movies/internal/domain/model"
)

// Filter narrows List. The zero value matches every movie.
type Filter struct {
	// Genre keeps movies with at least one genre equal to it, ignoring case.
	Genre string
}

// Store provides read/write access to the catalogue. Implementations return
// copies; mutating a returned Movie never changes the store.
type Store interface {
	// List returns the movies matching f in insertion order.
	List(ctx context.Context, f Filter) ([]model.Movie, error)

	// Get returns the movie with id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Movie, error)

	// Insert appends m. Returns ErrDuplicateID if m.ID is already stored.
	Insert(ctx context.Context, m model.Movie) error

	// Update applies p to the movie with id and returns the merged record,
	// or ErrNotFound.
	Update(ctx context.Context, id string, p model.MoviePatch) (model.Movie, error)

	// Delete removes the first movie with id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of movies stored.
	Count(ctx context.Context) int
}
