package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/rentfinder/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
)

// Error is a non-2xx answer from the server. It unwraps to the matching
// common sentinel so callers can use errors.Is.
type Error struct {
	Status  int
	Message string
	kind    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server answered %d", e.Status)
}

func (e *Error) Unwrap() error { return e.kind }

// RedirectError means the server refused the view and pointed elsewhere.
type RedirectError struct {
	Location string
}

func (e *RedirectError) Error() string {
	return "redirected to " + e.Location
}

func kindFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusForbidden:
		return common.ErrPermissionDenied
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrEmailInUse
	case http.StatusTooManyRequests:
		return common.ErrRateLimited
	case http.StatusBadGateway:
		return common.ErrUploadFailure
	default:
		return common.ErrorInternal
	}
}
