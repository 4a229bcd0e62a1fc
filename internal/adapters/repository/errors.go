package repository

import "errors"

// Sentinel kinds for catalogue errors.
var (
	ErrNotFound    = errors.New("movie not found")
	ErrDuplicateID = errors.New("duplicate movie id")
	ErrInvalidSeed = errors.New("invalid seed data")
)
