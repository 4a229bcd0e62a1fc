package api

import (
	"github.com/okian/movies/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

type serverOptions struct {
	allowedOrigins []string
	maxBodyBytes   int64
	logger         logger.Logger
}

func defaultServerOptions() *serverOptions {
	return &serverOptions{
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger.Nop(),
	}
}

// ServerOption configures NewServer.
type ServerOption func(*serverOptions)

// WithAllowedOrigins sets the CORS allow-list.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(o *serverOptions) {
		o.allowedOrigins = origins
	}
}

// WithMaxBodyBytes caps request bodies; larger bodies are rejected with 400.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
