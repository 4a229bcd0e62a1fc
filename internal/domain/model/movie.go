// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"strings"
)

// Movie is one record of the catalogue. ID is assigned by the service on
// creation and never changes afterwards.
type Movie struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Director string   `json:"director"`
	Duration int      `json:"duration"` // minutes
	Poster   string   `json:"poster"`
	Genre    []string `json:"genre"`
	Rate     float64  `json:"rate"`
}

// MovieInput is a fully validated movie without an id.
type MovieInput struct {
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Director string   `json:"director"`
	Duration int      `json:"duration"`
	Poster   string   `json:"poster"`
	Genre    []string `json:"genre"`
	Rate     float64  `json:"rate"`
}

// MoviePatch carries the fields of a partial update. Nil means "not provided".
type MoviePatch struct {
	Title    *string
	Year     *int
	Director *string
	Duration *int
	Poster   *string
	Genre    []string
	Rate     *float64
}

// NewMovie builds a Movie from validated input and an id.
func NewMovie(id string, in MovieInput) Movie {
	return Movie{
		ID:       id,
		Title:    in.Title,
		Year:     in.Year,
		Director: in.Director,
		Duration: in.Duration,
		Poster:   in.Poster,
		Genre:    slices.Clone(in.Genre),
		Rate:     in.Rate,
	}
}

// Clone returns a deep copy so callers cannot alias the genre slice.
func (m Movie) Clone() Movie {
	m.Genre = slices.Clone(m.Genre)
	return m
}

// HasGenre reports whether any of the movie's genres equals g, ignoring case.
func (m Movie) HasGenre(g string) bool {
	for _, mg := range m.Genre {
		if strings.EqualFold(mg, g) {
			return true
		}
	}
	return false
}

// Apply overwrites the provided fields of p onto m. The id is never touched.
func (m Movie) Apply(p MoviePatch) Movie {
	out := m.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Year != nil {
		out.Year = *p.Year
	}
	if p.Director != nil {
		out.Director = *p.Director
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.Poster != nil {
		out.Poster = *p.Poster
	}
	if p.Genre != nil {
		out.Genre = slices.Clone(p.Genre)
	}
	if p.Rate != nil {
		out.Rate = *p.Rate
	}
	return out
}

// IsEmpty reports whether the patch carries no fields.
func (p MoviePatch) IsEmpty() bool {
	return p.Title == nil && p.Year == nil && p.Director == nil && p.Duration == nil &&
		p.Poster == nil && p.Genre == nil && p.Rate == nil
}
