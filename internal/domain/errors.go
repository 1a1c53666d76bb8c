package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Notification pipeline errors. The registry and template errors wrap the
// generic sentinels above so a handler only needs to know the coarse class.
var (
	ErrUnknownVariant          = fmt.Errorf("unknown variant: %w", ErrNotFound)
	ErrConflictingRegistration = fmt.Errorf("conflicting registration: %w", ErrConflict)
	ErrRegistryFrozen          = errors.New("registry is frozen")
	ErrTemplateNotFound        = fmt.Errorf("template not found: %w", ErrNotFound)
	ErrUnsupportedChannel      = fmt.Errorf("unsupported channel: %w", ErrBadRequest)
	ErrRendering               = errors.New("rendering failed")
	ErrTransport               = errors.New("transport failure")
	ErrRepository              = errors.New("repository failure")
	// ErrDataIntegrity marks stored data the service cannot interpret, such as
	// a record whose Kind is no longer registered.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// RenderingError reports a placeholder that could not be resolved from the
// notification's parameters or derived fields.
type RenderingError struct {
	Key string
}

func (e *RenderingError) Error() string {
	return fmt.Sprintf("rendering failed: missing value for placeholder %q", e.Key)
}

func (e *RenderingError) Unwrap() error { return ErrRendering }
