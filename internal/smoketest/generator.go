package smoketest

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/movies/internal/domain/model"
	"github.com/okian/movies/internal/domain/validation"
)

const (
	maxGenresPerMovie = 3
	minDuration       = 60
	durationRange     = 120
	rateSteps         = 101
)

// randInt returns a uniform integer in [0, n) using crypto/rand.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateMovies creates n valid, distinct movie inputs. Titles embed a UUID so
// runs against a shared server never collide.
func generateMovies(n int) []model.MovieInput {
	out := make([]model.MovieInput, n)
	for i := range out {
		out[i] = generateMovie()
	}
	return out
}

func generateMovie() model.MovieInput {
	id := uuid.NewString()
	return model.MovieInput{
		Title:    "smoke-" + id,
		Year:     validation.MinYear + randInt(validation.MaxYear()-validation.MinYear+1),
		Director: "Director " + id[:8],
		Duration: minDuration + randInt(durationRange),
		Poster:   "https://img.movies.com/" + id + ".jpg",
		Genre:    pickGenres(1 + randInt(maxGenresPerMovie)),
		Rate:     float64(randInt(rateSteps)) / 10,
	}
}

// pickGenres returns n distinct genres in enumeration order.
func pickGenres(n int) []string {
	all := model.Genres()
	if n > len(all) {
		n = len(all)
	}
	picked := make(map[int]bool, n)
	for len(picked) < n {
		picked[randInt(len(all))] = true
	}
	out := make([]string, 0, n)
	for i, g := range all {
		if picked[i] {
			out = append(out, g)
		}
	}
	return out
}
