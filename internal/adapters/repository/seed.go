package repository

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/movies/internal/domain/model"
)

//go:embed movies.json
var defaultSeed []byte

// DefaultSeed returns the movies shipped with the service.
func DefaultSeed() ([]model.Movie, error) {
	return ReadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile reads a JSON array of movies from path.
func LoadSeedFile(path string) ([]model.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadSeed(f)
}

// ReadSeed decodes a JSON array of movies. Every record must carry an id.
func ReadSeed(r io.Reader) ([]model.Movie, error) {
	var movies []model.Movie
	if err := json.NewDecoder(r).Decode(&movies); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	for i, m := range movies {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: movie %d has no id", ErrInvalidSeed, i)
		}
	}
	return movies, nil
}
