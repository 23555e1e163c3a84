package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when an entity does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %d", e.Resource, e.ID)
}

// InvalidStateError is returned when an operation is illegal in the entity's
// current lifecycle state. Required names the states the operation expects.
type InvalidStateError struct {
	Resource string
	Current  string
	Required string
}

func (e *InvalidStateError) Error() string {
	if e.Required == "" {
		return fmt.Sprintf("operation not allowed for %s with status: %s", e.Resource, e.Current)
	}
	return fmt.Sprintf("operation not allowed for %s with status %s (requires %s)", e.Resource, e.Current, e.Required)
}

// ConflictError is returned when a table is already assigned to a different
// reservation. HolderID names the reservation holding the table so staff can
// pick another one.
type ConflictError struct {
	TableNumber string
	HolderID    uint
	Detail      string // overrides the default message when set
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("table %s is already assigned to another reservation (#%d), please choose a different table",
		e.TableNumber, e.HolderID)
}

// ValidationError is returned for malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TokenInvalidError is returned for expired, malformed or tampered check-in
// tokens. Terminal and non-retryable.
type TokenInvalidError struct {
	Reason string
}

func (e *TokenInvalidError) Error() string {
	return "invalid check-in token: " + e.Reason
}

// UpstreamError wraps a failure from an external collaborator.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus maps a domain error to the HTTP status a controller should
// respond with.
func HTTPStatus(err error) int {
	var (
		notFound     *NotFoundError
		invalidState *InvalidStateError
		conflict     *ConflictError
		validation   *ValidationError
		token        *TokenInvalidError
		upstream     *UpstreamError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalidState):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &token):
		return http.StatusForbidden
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
