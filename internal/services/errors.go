package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid               ErrorCode = "invalid"
	ErrorInvalidResponse       ErrorCode = "invalid_response"
	ErrorInsufficientResponses ErrorCode = "insufficient_responses"
	ErrorCouplePending         ErrorCode = "couple_pending"
	ErrorForbidden             ErrorCode = "forbidden"
	ErrorNotFound              ErrorCode = "not_found"
	ErrorConflict              ErrorCode = "conflict"
	ErrorUnauthorized          ErrorCode = "unauthorized"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error { return &ServiceError{Code: ErrorInvalid, Message: msg} }

// NewInvalidResponseError flags an answer referencing an unknown question or
// an option outside the question's catalog entry.
func NewInvalidResponseError(msg string) error {
	return &ServiceError{Code: ErrorInvalidResponse, Message: msg}
}

// NewInsufficientResponsesError signals that too few valid answers remain to
// produce a score result. Callers treat it as "assessment incomplete".
func NewInsufficientResponsesError(msg string) error {
	return &ServiceError{Code: ErrorInsufficientResponses, Message: msg}
}

// NewCouplePendingError signals that one side of a couple pair has not
// completed yet. It is distinct from a computation failure.
func NewCouplePendingError(msg string) error {
	return &ServiceError{Code: ErrorCouplePending, Message: msg}
}

func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err is a ServiceError with the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}
