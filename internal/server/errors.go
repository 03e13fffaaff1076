package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/job-tracker/internal/accounts"
	"github.com/jonathan/job-tracker/internal/tracker"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Store failures behind the tracker surface as 502 since the upstream table store rejected the call.
func HTTPStatus(err error) int {
	var (
		emailExists      *ErrEmailAlreadyExists
		invalidCreds     *ErrInvalidCredentials
		passwordMismatch *ErrPasswordMismatch
		userNotFound     *ErrUserNotFound
		validation       *ErrValidation
		trackerInvalid   *tracker.ValidationError
		accountInvalid   *accounts.ValidationError
		loadFailed       *tracker.LoadFailedError
		addFailed        *tracker.AddFailedError
		deleteFailed     *tracker.DeleteFailedError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &invalidCreds), errors.As(err, &passwordMismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &trackerInvalid), errors.As(err, &accountInvalid):
		return http.StatusBadRequest
	case errors.As(err, &loadFailed), errors.As(err, &addFailed), errors.As(err, &deleteFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
