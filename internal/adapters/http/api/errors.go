package api

// Messages returned in error bodies.
const (
	msgMovieNotFound  = "movie not found"
	msgMovieDeleted   = "movie deleted"
	msgInternalError  = "internal server error"
	msgGreeting       = "Hola mundo"
	msgBodyTooLarge   = "request body too large"
	msgServiceStopped = "service unavailable"
)
