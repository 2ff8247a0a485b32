package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries an error code and the HTTP status it maps to.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeAuthentication = "AUTHENTICATION_FAILED"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeUpstream       = "UPSTREAM_ERROR"
	ErrCodeSignature      = "SIGNATURE_INVALID"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// NewAuthenticationError deliberately hides which check failed: the wrapped
// cause is for logs only and never reaches a response body.
func NewAuthenticationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeAuthentication,
		Message:    "Invalid API credentials",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewRateLimitError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRateLimited,
		Message:    "Rate limit exceeded. Please retry later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid payment request",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewUpstreamError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUpstream,
		Message:    "Payment processor is unavailable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewSignatureError hides the verification detail the same way
// authentication errors do.
func NewSignatureError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSignature,
		Message:    "Invalid webhook signature",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewInvalidStateError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidState,
		Message:    "Invalid state",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewNotFoundError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    "Payment not found",
		HTTPStatus: http.StatusNotFound,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
