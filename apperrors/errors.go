// Package apperrors defines the error taxonomy shared by the catalog and
// attributes packages. Handlers translate these into HTTP responses;
// ValidationError and ConflictError are expected caller-correctable
// outcomes, IntegrityError signals corrupted data and must reach a
// top-level handler.
package apperrors

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries a field-keyed list of violated rule names.
// Custom attribute fields are keyed "attributes.<slug>".
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a violated rule name for a field.
func (e *ValidationError) Add(field string, rules ...string) {
	e.Fields[field] = append(e.Fields[field], rules...)
}

// HasErrors reports whether any field has a violation.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError blocks an otherwise well-formed request because of current
// state, e.g. deleting a category that still has live products.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError covers both genuinely absent entities and cross-tenant ids,
// so existence never leaks across tenants.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// AuthorizationError means the capability check failed before any mutation.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return "not authorized to " + e.Action
}

// IntegrityError means an internal invariant is violated (e.g. a cycle in
// category ancestry). Never recovered silently.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string { return "integrity error: " + e.Message }

func Integrity(format string, args ...interface{}) *IntegrityError {
	return &IntegrityError{Message: fmt.Sprintf(format, args...)}
}
