// Package errors defines the error types sedmap returns. Loaders use them
// to classify a failed record as absent, malformed or unresolved, and the
// CLI and HTTP API map them to exit messages and status codes.
package errors

import (
	"errors"
	"fmt"
)

// New, Is, As and Join are the standard library functions, re-exported so
// callers need one errors import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinels matched with Is. The typed errors below report one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported")
	// ErrUnresolved marks a publication key with no usable bibcode.
	ErrUnresolved = errors.New("unresolved reference")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err is or wraps ErrInvalidInput.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUnsupported reports whether err is or wraps ErrUnsupported.
func IsUnsupported(err error) bool { return errors.Is(err, ErrUnsupported) }

// NotFoundError names a table, object, row or payload that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError returns a NotFoundError for the resource kind and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError is a value that failed a presence, range or unit check.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// WrapValidation reports err as a ValidationError on field. A nil err stays nil.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConfigError reports a setting that keeps a component from starting, such
// as an unopenable catalog DSN. The HTTP API answers it with 503.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// NewConfigError returns a ConfigError; err may be nil.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("%s config: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// QueryError is a catalog query that the backend rejected or failed.
type QueryError struct {
	Table string
	Query string
	Err   error
}

// WrapQuery reports err as a QueryError on table. A nil err stays nil.
func WrapQuery(table, query string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Table: table, Query: query, Err: err}
}

func (e *QueryError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("querying %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("querying %s with %s: %v", e.Table, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ParseError is a unit string or spectrum payload that could not be read.
// Line is 1-based and zero when unknown.
type ParseError struct {
	Format  string // "text", "csv", "fits", "unit", ...
	File    string
	Line    int
	Message string
	Err     error
}

// NewParseError returns a ParseError without a line number.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// WrapParse reports err as a ParseError. A nil err stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Format, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Format, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError is a failed read, fetch, open or close of a payload or file.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

// NewIOError returns an IOError for the operation on path.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapIO reports err as an IOError. A nil err stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ResourceError is a failed operation on a named catalog resource.
type ResourceError struct {
	Operation string // "open", "search", "inventory", "configure", ...
	Resource  string // "catalog", "object", "config", ...
	ID        string
	Err       error
}

// NewResourceError returns a ResourceError; id may be empty.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// WrapResource reports err as a ResourceError. A nil err stays nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

func (e *ResourceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Operation, e.Resource, e.ID, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
