package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrRefreshFailed = errors.New("token refresh failed")
)

// GenericFailureMessage is shown when the backend gave no usable message.
const GenericFailureMessage = "request failed, please try again later"

// APIError is a non-2xx response. Message is user-facing.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is match 401/403 responses against the sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// UserMessage extracts a message fit for display from any client error.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrUnavailable):
		return "server unreachable"
	case errors.Is(err, ErrRefreshFailed), errors.Is(err, ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, ErrForbidden):
		return "access denied"
	default:
		return GenericFailureMessage
	}
}
