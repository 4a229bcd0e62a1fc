// Package validation checks movie request bodies field by field.
//
// ValidateMovie is used on create and requires every field except rate.
// ValidatePartialMovie is used on update and treats every field as optional.
// Both return a Result that is either valid, carrying only the recognised
// fields converted to their Go types, or invalid, carrying the issues found.
package validation

import (
	"fmt"
	"strings"
)

// Issue codes.
const (
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodeInvalidURL  = "invalid_url"
	CodeInvalidEnum = "invalid_enum_value"
	CodeInvalidJSON = "invalid_json"
)

// Issue describes one rejected field.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error carries the issues of an invalid body across layers.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		if is.Field == "" {
			parts[i] = is.Message
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", is.Field, is.Message)
	}
	return "invalid movie: " + strings.Join(parts, "; ")
}

// Result is the outcome of a validation: valid data or a list of issues.
type Result[T any] struct {
	data   T
	issues []Issue
}

// Valid wraps validated data.
func Valid[T any](data T) Result[T] {
	return Result[T]{data: data}
}

// Invalid wraps one or more issues.
func Invalid[T any](issues ...Issue) Result[T] {
	return Result[T]{issues: issues}
}

// OK reports whether validation succeeded.
func (r Result[T]) OK() bool { return len(r.issues) == 0 }

// Data returns the validated data. It is the zero value when !OK().
func (r Result[T]) Data() T { return r.data }

// Issues returns the problems found; nil when OK().
func (r Result[T]) Issues() []Issue { return r.issues }

// Err returns a *Error for invalid results and nil otherwise.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Issues: r.issues}
}
