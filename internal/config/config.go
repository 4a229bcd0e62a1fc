// Package config defines the service configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file named by
// MOVIES_CONFIG, then environment variables (PORT and MOVIES_*).
package config

import (
	"net"
	"strconv"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Host is the interface to bind; empty binds all interfaces.
	Host string `koanf:"host"`

	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// AllowedOrigins lists the origins echoed in Access-Control-Allow-Origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// SeedFile optionally replaces the embedded movie seed with a JSON file.
	SeedFile string `koanf:"seed_file"`
}

// DefaultAllowedOrigins are the origins accepted when none are configured.
func DefaultAllowedOrigins() []string {
	return []string{
		"http://localhost:8080",
		"http://localhost:1234",
		"https://movies.com",
		"https://admin.movies.com",
	}
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Port:           1234,
		AllowedOrigins: DefaultAllowedOrigins(),
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
