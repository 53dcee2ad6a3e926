package server

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/sedmap/pkg/errors"
)

// Config configures the API server.
type Config struct {
	Host string
	Port int // 0 picks a free port

	// PathPrefix is prepended to every API route but not to /health or /metrics.
	PathPrefix string

	// CORSOrigins restricts CORS to the listed origins; empty with
	// CORSEnabled admits any origin.
	CORSEnabled bool
	CORSOrigins []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration // bounds a whole SED assembly, spectrum fetches included
	IdleTimeout  time.Duration

	MetricsEnabled bool
}

// DefaultConfig listens on localhost:8080 under /api/v1 with metrics on.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           8080,
		PathPrefix:     "/api/v1",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   2 * time.Minute,
		IdleTimeout:    2 * time.Minute,
		MetricsEnabled: true,
	}
}

// Validate rejects ports outside 0-65535, negative timeouts and a prefix
// that does not start with a slash.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.NewValidationError("port", c.Port, "port out of range")
	}
	timeouts := map[string]time.Duration{
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"idle_timeout":  c.IdleTimeout,
	}
	for name, d := range timeouts {
		if d < 0 {
			return errors.NewValidationError(name, d, "timeouts cannot be negative")
		}
	}
	if c.PathPrefix != "" && !strings.HasPrefix(c.PathPrefix, "/") {
		return errors.NewValidationError("path_prefix", c.PathPrefix, "prefix must start with /")
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
