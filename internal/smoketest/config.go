// Package smoketest drives a running movies server end to end over HTTP.
package smoketest

import (
	"time"

	"github.com/okian/movies/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumMovies  int           // Number of movies to create
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Origin     string        // Origin sent on CORS checks; must be allow-listed by the server
	OutputFile string        // Output file for created movies; empty disables saving
	Verbose    bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	MoviesGenerated int
	MoviesCreated   int
	MoviesVerified  int
	MoviesPatched   int
	MoviesDeleted   int
	Failures        int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// created pairs a movie returned by the server with the input it came from.
type created struct {
	input model.MovieInput
	movie model.Movie
}
