package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/internal/domain/validation"
	"github.com/okian/movies/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const preflightMethods = "GET,POST,PUT,PATCH,DELETE"

// Run drives a live movies server through create, read, filter, patch and
// delete and returns the collected statistics. Every movie it creates is
// deleted again before it returns, unless the run is cancelled.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("smoketest")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.Timeout, cfg.Origin)

	log.Info(ctx, "starting movies smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("movies", cfg.NumMovies),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.String("origin", cfg.Origin))

	if err := checkServiceHealth(ctx, client, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if err := checkCORS(ctx, client, cfg); err != nil {
		return stats, err
	}

	inputs := generateMovies(cfg.NumMovies)
	stats.MoviesGenerated = len(inputs)

	movies, failed := createMovies(ctx, client, cfg, inputs)
	stats.MoviesCreated = len(movies)
	stats.Failures += failed

	failed = runPool(ctx, cfg, "verify", len(movies), func(ctx context.Context, i int) error {
		return verifyMovie(ctx, client, cfg, movies[i])
	})
	stats.MoviesVerified = len(movies) - failed
	stats.Failures += failed

	if err := verifyGenreFilter(ctx, client, cfg, movies); err != nil {
		log.Warn(ctx, "genre filter check failed", logger.Error(err))
		stats.Failures++
	}

	failed = runPool(ctx, cfg, "patch", len(movies), func(ctx context.Context, i int) error {
		return patchMovie(ctx, client, cfg, movies[i])
	})
	stats.MoviesPatched = len(movies) - failed
	stats.Failures += failed

	if err := saveMoviesToFile(ctx, cfg, movies); err != nil {
		log.Warn(ctx, "failed to save movies to file", logger.Error(err))
	}

	failed = runPool(ctx, cfg, "delete", len(movies), func(ctx context.Context, i int) error {
		return deleteMovie(ctx, client, cfg, movies[i].movie.ID)
	})
	stats.MoviesDeleted = len(movies) - failed
	stats.Failures += failed

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failures > 0 {
		return stats, fmt.Errorf("%w: %d", ErrFailures, stats.Failures)
	}
	log.Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, cfg *Config) error {
	resp, err := client.Do(ctx, http.MethodGet, cfg.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	return resp.expect(http.StatusOK, nil)
}

// checkCORS verifies that the configured origin is echoed and the item
// route answers preflight requests.
func checkCORS(ctx context.Context, client *HTTPClient, cfg *Config) error {
	if cfg.Origin == "" {
		return nil
	}
	resp, err := client.Do(ctx, http.MethodOptions, cfg.BaseURL+"/movies/preflight", nil)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	if err := resp.expect(http.StatusOK, nil); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	if got := resp.header.Get("Access-Control-Allow-Origin"); got != cfg.Origin {
		return fmt.Errorf("%w: origin %q not echoed (got %q)", ErrCORS, cfg.Origin, got)
	}
	if got := resp.header.Get("Access-Control-Allow-Methods"); got != preflightMethods {
		return fmt.Errorf("%w: unexpected allowed methods %q", ErrCORS, got)
	}
	return nil
}

// createMovies posts every input concurrently and returns the movies the
// server accepted, in input order.
func createMovies(ctx context.Context, client *HTTPClient, cfg *Config, inputs []model.MovieInput) ([]created, int) {
	results := make([]*model.Movie, len(inputs))
	failed := runPool(ctx, cfg, "create", len(inputs), func(ctx context.Context, i int) error {
		resp, err := client.Do(ctx, http.MethodPost, cfg.BaseURL+"/movies", inputs[i])
		if err != nil {
			return err
		}
		var m model.Movie
		if err := resp.expect(http.StatusCreated, &m); err != nil {
			return err
		}
		if m.ID == "" {
			return fmt.Errorf("%w: created movie has no id", ErrMismatch)
		}
		results[i] = &m
		return nil
	})

	out := make([]created, 0, len(inputs))
	for i, m := range results {
		if m != nil {
			out = append(out, created{input: inputs[i], movie: *m})
		}
	}
	return out, failed
}

func verifyMovie(ctx context.Context, client *HTTPClient, cfg *Config, c created) error {
	resp, err := client.Do(ctx, http.MethodGet, movieURL(cfg, c.movie.ID), nil)
	if err != nil {
		return err
	}
	var got model.Movie
	if err := resp.expect(http.StatusOK, &got); err != nil {
		return err
	}
	if want := model.NewMovie(c.movie.ID, c.input); !sameMovie(got, want) {
		return fmt.Errorf("%w: %+v != %+v", ErrMismatch, got, want)
	}
	return nil
}

// verifyGenreFilter checks that filtering by each genre, in lower case,
// returns every created movie carrying it.
func verifyGenreFilter(ctx context.Context, client *HTTPClient, cfg *Config, movies []created) error {
	byGenre := make(map[string][]string)
	for _, c := range movies {
		for _, g := range c.movie.Genre {
			byGenre[g] = append(byGenre[g], c.movie.ID)
		}
	}

	for genre, want := range byGenre {
		q := url.Values{"genre": {strings.ToLower(genre)}}
		resp, err := client.Do(ctx, http.MethodGet, cfg.BaseURL+"/movies?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		var got []model.Movie
		if err := resp.expect(http.StatusOK, &got); err != nil {
			return err
		}
		ids := make(map[string]bool, len(got))
		for _, m := range got {
			if !m.HasGenre(genre) {
				return fmt.Errorf("%w: %s returned for genre %s", ErrMismatch, m.ID, genre)
			}
			ids[m.ID] = true
		}
		for _, id := range want {
			if !ids[id] {
				return fmt.Errorf("%w: %s missing from genre %s", ErrMismatch, id, genre)
			}
		}
	}
	return nil
}

// patchMovie bumps the rate and checks that nothing else changed.
func patchMovie(ctx context.Context, client *HTTPClient, cfg *Config, c created) error {
	rate := c.input.Rate + 1
	if rate > validation.MaxRate {
		rate = validation.MinRate
	}
	resp, err := client.Do(ctx, http.MethodPatch, movieURL(cfg, c.movie.ID), map[string]any{"rate": rate})
	if err != nil {
		return err
	}
	var got model.Movie
	if err := resp.expect(http.StatusOK, &got); err != nil {
		return err
	}
	want := model.NewMovie(c.movie.ID, c.input)
	want.Rate = rate
	if !sameMovie(got, want) {
		return fmt.Errorf("%w: %+v != %+v", ErrMismatch, got, want)
	}
	return nil
}

// deleteMovie removes the movie and checks that it is gone.
func deleteMovie(ctx context.Context, client *HTTPClient, cfg *Config, id string) error {
	resp, err := client.Do(ctx, http.MethodDelete, movieURL(cfg, id), nil)
	if err != nil {
		return err
	}
	if err := resp.expect(http.StatusOK, nil); err != nil {
		return err
	}
	resp, err = client.Do(ctx, http.MethodGet, movieURL(cfg, id), nil)
	if err != nil {
		return err
	}
	return resp.expect(http.StatusNotFound, nil)
}

func movieURL(cfg *Config, id string) string {
	return cfg.BaseURL + "/movies/" + url.PathEscape(id)
}

func sameMovie(a, b model.Movie) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Year == b.Year &&
		a.Director == b.Director &&
		a.Duration == b.Duration &&
		a.Poster == b.Poster &&
		a.Rate == b.Rate &&
		slices.Equal(a.Genre, b.Genre)
}

// saveMoviesToFile writes the created movies as a JSON array. The file can be
// fed back to the server as a seed.
func saveMoviesToFile(ctx context.Context, cfg *Config, movies []created) error {
	if cfg.OutputFile == "" || len(movies) == 0 {
		return nil
	}
	if dir := filepath.Dir(cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	out := make([]model.Movie, len(movies))
	for i, c := range movies {
		out[i] = c.movie
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal movies: %w", err)
	}
	if err := os.WriteFile(cfg.OutputFile, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Named("smoketest").Info(ctx, "movies saved to file", logger.String("filename", cfg.OutputFile))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, moviesPerSecond float64
	if stats.MoviesGenerated > 0 {
		successRate = float64(stats.MoviesCreated) / float64(stats.MoviesGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		moviesPerSecond = float64(stats.MoviesCreated) / stats.Duration.Seconds()
	}

	logger.Named("smoketest").Info(ctx, "final statistics",
		logger.Int("moviesGenerated", stats.MoviesGenerated),
		logger.Int("moviesCreated", stats.MoviesCreated),
		logger.Int("moviesVerified", stats.MoviesVerified),
		logger.Int("moviesPatched", stats.MoviesPatched),
		logger.Int("moviesDeleted", stats.MoviesDeleted),
		logger.Int("failures", stats.Failures),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("moviesPerSecond", moviesPerSecond))
}
