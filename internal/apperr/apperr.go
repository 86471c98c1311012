// Package apperr defines the error kinds shared by the catalog, profile and
// ranking modules. Callers test kinds with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks an unresolved move, Pokémon, format or scenario.
	ErrNotFound = errors.New("not found")
	// ErrDomain marks inputs outside the domain of a calculation.
	ErrDomain = errors.New("domain error")
	// ErrValidation marks upstream data that breaks a declared bound.
	ErrValidation = errors.New("validation error")
)

// NotFound builds an ErrNotFound for an entity kind and its identifier.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Domain builds an ErrDomain with a formatted message.
func Domain(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrDomain)
}

// Validation builds an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// HTTPStatus maps an error kind to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDomain), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
