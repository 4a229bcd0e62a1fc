package smoketest

import "errors"

// Error constants.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMismatch         = errors.New("response does not match")
	ErrCORS             = errors.New("cors check failed")
	ErrFailures         = errors.New("smoke run had failures")
)
