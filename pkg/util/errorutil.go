package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redlink/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

type sentinelMapping struct {
	err    error
	code   string
	status int
}

var sentinels = []sentinelMapping{
	{domain.ErrInvalidQuantity, "INVALID_QUANTITY", http.StatusUnprocessableEntity},
	{domain.ErrInvalidBloodGroup, "INVALID_BLOOD_GROUP", http.StatusUnprocessableEntity},
	{domain.ErrInvalidResponse, "INVALID_RESPONSE", http.StatusUnprocessableEntity},
	{domain.ErrInvalidPauseDuration, "INVALID_PAUSE_DURATION", http.StatusUnprocessableEntity},
	{domain.ErrIneligibleAge, "INELIGIBLE_AGE", http.StatusUnprocessableEntity},
	{domain.ErrIneligibleWeight, "INELIGIBLE_WEIGHT", http.StatusUnprocessableEntity},
	{domain.ErrInvalidLastDonation, "INVALID_LAST_DONATION", http.StatusUnprocessableEntity},
	{domain.ErrDonorNameRequired, "VALIDATION_FAILED", http.StatusBadRequest},
	{domain.ErrInvalidCredential, "INVALID_CREDENTIAL", http.StatusUnauthorized},
	{domain.ErrRequestNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrDonorNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrRequestAlreadyResolved, "CONFLICT", http.StatusConflict},
	{domain.ErrHardLocked, "HARD_LOCKED", http.StatusLocked},
}

// ToDomainError converts core and framework errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, m := range sentinels {
		if errors.Is(err, m.err) {
			return &DomainError{Code: m.code, Message: m.err.Error(), HTTPStatus: m.status, Err: err}
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_FAILED"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestTimeout:
		return "TIMEOUT"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_FAILED"
}
