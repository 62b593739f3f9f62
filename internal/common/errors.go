// Package common defines the error taxonomy and small helpers shared by the
// server and the terminal client. Callers should use errors.Is to match the
// sentinel values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any remote call is made.
	ErrValidation = errors.New("validation error")

	// Image validation errors. Both are validation errors.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported image type", ErrValidation)
	ErrTooLarge        = fmt.Errorf("%w: image too large", ErrValidation)

	// ErrAuth is the parent of every credential/account problem.
	ErrAuth = errors.New("auth error")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrAccountNotFound    = fmt.Errorf("%w: account not found", ErrAuth)
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email", ErrAuth)
	ErrRateLimited        = fmt.Errorf("%w: too many attempts", ErrAuth)
	ErrEmailInUse         = fmt.Errorf("%w: email already in use", ErrAuth)

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	ErrPermissionDenied = errors.New("permission denied")
	ErrUploadFailure    = errors.New("upload failed")

	// Token and session errors.
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	ErrorInternal = errors.New("internal error")
)

// UserMessage returns the message shown to a person for err. Anything outside
// the taxonomy collapses into a generic message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedType):
		return "Only JPG, PNG, JPEG, WEBP images allowed"
	case errors.Is(err, ErrTooLarge):
		return "Image must be less than 5MB"
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrAccountNotFound):
		return "No account found with this email"
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address"
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts. Please try again later."
	case errors.Is(err, ErrEmailInUse):
		return "An account with this email already exists"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrPermissionDenied):
		return "You are not allowed to change this listing"
	case errors.Is(err, ErrUploadFailure):
		return "Image upload failed"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrRefreshTokenExpired):
		return "Please log in again"
	default:
		return "Something went wrong. Please try again."
	}
}

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
