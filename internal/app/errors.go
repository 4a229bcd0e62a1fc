package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrIDExhausted = errors.New("could not allocate a unique movie id")
)
