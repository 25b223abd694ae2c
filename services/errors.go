package services

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of service failure.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"    // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// ServiceError carries the HTTP status a handler should answer with.
type ServiceError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewInvalidRequest(msg string) *ServiceError {
	return &ServiceError{Code: ErrInvalidRequest, Status: 400, Message: msg}
}

func NewUnauthorized(msg string) *ServiceError {
	return &ServiceError{Code: ErrUnauthorized, Status: 401, Message: msg}
}

func NewNotFound(resource, id string) *ServiceError {
	return &ServiceError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"id": id},
	}
}

func NewConflict(msg string) *ServiceError {
	return &ServiceError{Code: ErrConflict, Status: 409, Message: msg}
}

// NewInternal wraps an unexpected failure, usually from the database.
func NewInternal(op string, err error) *ServiceError {
	return &ServiceError{
		Code:    ErrInternal,
		Status:  500,
		Message: fmt.Sprintf("failed to %s", op),
		Err:     err,
	}
}

// AsServiceError returns err as a *ServiceError, wrapping anything else as internal.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewInternal("complete request", err)
}

// IsNotFound reports whether err is a NOT_FOUND service error.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Code == ErrNotFound
}
