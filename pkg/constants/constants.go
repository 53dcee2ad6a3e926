// Package constants provides shared constants used throughout the sedmap codebase.
// This includes timeouts, catalog defaults, file permissions and the
// diagnostic tag that prefixes every loader event.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for fetching spectrum payloads over HTTP
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultQueryTimeout bounds a single catalog query
	DefaultQueryTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 5 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Catalog defaults
const (
	// DiagnosticTag prefixes every loader diagnostic.
	DiagnosticTag = "SIMPLE"

	// DefaultDatabase is the catalog DSN used when none is configured.
	DefaultDatabase = "SIMPLE.sqlite"

	// MaxSpectrumBytes caps a single fetched spectrum payload.
	MaxSpectrumBytes = 64 << 20
)
