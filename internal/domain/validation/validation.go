package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/okian/movies/internal/domain/model"
)

// ErrNotObject is returned by Decode when the body is not a single JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// Decode parses a JSON object keeping numbers as json.Number so integers can
// be told apart from fractions.
func Decode(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	if raw == nil {
		return nil, ErrNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrNotObject
	}
	return raw, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(b []byte) (map[string]any, error) {
	return Decode(bytes.NewReader(b))
}

// DecodeIssue converts a Decode error into an Issue for the response body.
func DecodeIssue(err error) Issue {
	return Issue{Code: CodeInvalidJSON, Message: err.Error()}
}

// ValidateMovie checks a create body. Every field except rate is required;
// rate defaults to DefaultRate. Unknown fields are dropped.
func ValidateMovie(raw map[string]any) Result[model.MovieInput] {
	var (
		in     = model.MovieInput{Rate: DefaultRate}
		issues []Issue
	)

	collect := func(is *Issue) {
		if is != nil {
			issues = append(issues, *is)
		}
	}

	if v, ok := raw["title"]; ok {
		var is *Issue
		in.Title, is = validateTitle(v)
		collect(is)
	} else {
		issues = append(issues, required("title"))
	}

	if v, ok := raw["year"]; ok {
		var is *Issue
		in.Year, is = validateYear(v)
		collect(is)
	} else {
		issues = append(issues, required("year"))
	}

	if v, ok := raw["director"]; ok {
		var is *Issue
		in.Director, is = validateDirector(v)
		collect(is)
	} else {
		issues = append(issues, required("director"))
	}

	if v, ok := raw["duration"]; ok {
		var is *Issue
		in.Duration, is = validateDuration(v)
		collect(is)
	} else {
		issues = append(issues, required("duration"))
	}

	if v, ok := raw["poster"]; ok {
		var is *Issue
		in.Poster, is = validatePoster(v)
		collect(is)
	} else {
		issues = append(issues, required("poster"))
	}

	if v, ok := raw["genre"]; ok {
		var gis []Issue
		in.Genre, gis = validateGenre(v)
		issues = append(issues, gis...)
	} else {
		issues = append(issues, required("genre"))
	}

	if v, ok := raw["rate"]; ok {
		var is *Issue
		in.Rate, is = validateRate(v)
		collect(is)
	}

	if len(issues) > 0 {
		return Invalid[model.MovieInput](issues...)
	}
	return Valid(in)
}

// ValidatePartialMovie checks an update body. All fields are optional and
// absent fields stay nil in the patch. Unknown fields are dropped.
func ValidatePartialMovie(raw map[string]any) Result[model.MoviePatch] {
	var (
		p      model.MoviePatch
		issues []Issue
	)

	if v, ok := raw["title"]; ok {
		if s, is := validateTitle(v); is != nil {
			issues = append(issues, *is)
		} else {
			p.Title = &s
		}
	}

	if v, ok := raw["year"]; ok {
		if y, is := validateYear(v); is != nil {
			issues = append(issues, *is)
		} else {
			p.Year = &y
		}
	}

	if v, ok := raw["director"]; ok {
		if s, is := validateDirector(v); is != nil {
			issues = append(issues, *is)
		} else {
			p.Director = &s
		}
	}

	if v, ok := raw["duration"]; ok {
		if d, is := validateDuration(v); is != nil {
			issues = append(issues, *is)
		} else {
			p.Duration = &d
		}
	}

	if v, ok := raw["poster"]; ok {
		if s, is := validatePoster(v); is != nil {
			issues = append(issues, *is)
		} else {
			p.Poster = &s
		}
	}

	if v, ok := raw["genre"]; ok {
		if g, gis := validateGenre(v); len(gis) > 0 {
			issues = append(issues, gis...)
		} else {
			p.Genre = g
		}
	}

	if v, ok := raw["rate"]; ok {
		if r, is := validateRate(v); is != nil {
			issues = append(issues, *is)
		} else {
			p.Rate = &r
		}
	}

	if len(issues) > 0 {
		return Invalid[model.MoviePatch](issues...)
	}
	return Valid(p)
}
