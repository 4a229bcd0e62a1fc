package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/okian/movies/internal/domain/model"
)

// Field bounds.
const (
	MinYear     = 1900
	YearsAhead  = 5 // accepted past the current year
	MinRate     = 0
	MaxRate     = 10
	DefaultRate = 5
)

// MaxYear is the latest accepted release year.
func MaxYear() int {
	return time.Now().Year() + YearsAhead
}

func required(field string) Issue {
	return Issue{Field: field, Code: CodeRequired, Message: field + " is required"}
}

func wrongType(field, want string, got any) Issue {
	return Issue{
		Field:   field,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("%s must be %s, received %s", field, want, jsonType(got)),
	}
}

func checkString(field string, v any) (string, *Issue) {
	s, ok := v.(string)
	if !ok {
		is := wrongType(field, "a string", v)
		return "", &is
	}
	return s, nil
}

func checkNonEmpty(field string, v any) (string, *Issue) {
	s, is := checkString(field, v)
	if is != nil {
		return "", is
	}
	if strings.TrimSpace(s) == "" {
		return "", &Issue{Field: field, Code: CodeTooSmall, Message: field + " must not be empty"}
	}
	return s, nil
}

// checkNumber accepts json.Number (decoder.UseNumber) as well as native numeric types.
func checkNumber(field string, v any) (float64, *Issue) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			is := wrongType(field, "a number", v)
			return 0, &is
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		is := wrongType(field, "a number", v)
		return 0, &is
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		is := wrongType(field, "a finite number", v)
		return 0, &is
	}
	return f, nil
}

func checkInt(field string, v any) (int, *Issue) {
	f, is := checkNumber(field, v)
	if is != nil {
		return 0, is
	}
	if math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return 0, &Issue{Field: field, Code: CodeInvalidType, Message: field + " must be an integer"}
	}
	return int(f), nil
}

func checkRange(field string, v, lo, hi float64) *Issue {
	if v < lo {
		return &Issue{Field: field, Code: CodeTooSmall, Message: fmt.Sprintf("%s must be greater than or equal to %g", field, lo)}
	}
	if v > hi {
		return &Issue{Field: field, Code: CodeTooBig, Message: fmt.Sprintf("%s must be less than or equal to %g", field, hi)}
	}
	return nil
}

func validateTitle(v any) (string, *Issue) { return checkNonEmpty("title", v) }

func validateDirector(v any) (string, *Issue) { return checkNonEmpty("director", v) }

func validateYear(v any) (int, *Issue) {
	y, is := checkInt("year", v)
	if is != nil {
		return 0, is
	}
	return y, checkRange("year", float64(y), MinYear, float64(MaxYear()))
}

func validateDuration(v any) (int, *Issue) {
	d, is := checkInt("duration", v)
	if is != nil {
		return 0, is
	}
	if d <= 0 {
		return 0, &Issue{Field: "duration", Code: CodeTooSmall, Message: "duration must be a positive number of minutes"}
	}
	return d, nil
}

func validateRate(v any) (float64, *Issue) {
	r, is := checkNumber("rate", v)
	if is != nil {
		return 0, is
	}
	return r, checkRange("rate", r, MinRate, MaxRate)
}

func validatePoster(v any) (string, *Issue) {
	s, is := checkString("poster", v)
	if is != nil {
		return "", is
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return "", &Issue{Field: "poster", Code: CodeInvalidURL, Message: "poster must be a valid URL"}
	}
	return s, nil
}

func validateGenre(v any) ([]string, []Issue) {
	items, ok := v.([]any)
	if !ok {
		if ss, isStrings := v.([]string); isStrings {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return nil, []Issue{wrongType("genre", "an array of enum genre", v)}
		}
	}
	if len(items) == 0 {
		return nil, []Issue{{Field: "genre", Code: CodeTooSmall, Message: "genre must contain at least one element"}}
	}
	out := make([]string, 0, len(items))
	var issues []Issue
	for i, item := range items {
		field := fmt.Sprintf("genre.%d", i)
		s, ok := item.(string)
		if !ok {
			issues = append(issues, wrongType(field, "a string", item))
			continue
		}
		if !model.IsGenre(s) {
			issues = append(issues, Issue{
				Field:   field,
				Code:    CodeInvalidEnum,
				Message: fmt.Sprintf("invalid enum value %q, expected one of %s", s, strings.Join(model.Genres(), ", ")),
			})
			continue
		}
		out = append(out, s)
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
