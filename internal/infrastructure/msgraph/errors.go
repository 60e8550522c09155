package msgraph

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for Microsoft Graph API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("msgraph: unauthorised")

	// ErrForbidden indicates the user lacks permission for the requested resource.
	ErrForbidden = errors.New("msgraph: forbidden")

	ErrNotFound = errors.New("msgraph: not found")

	// ErrRateLimited indicates the request was throttled by Microsoft Graph.
	ErrRateLimited = errors.New("msgraph: rate limited")

	ErrBadRequest = errors.New("msgraph: bad request")

	ErrServerError = errors.New("msgraph: server error")

	// ErrUnexpectedStatus covers any other non-2xx status.
	ErrUnexpectedStatus = errors.New("msgraph: unexpected status")
)

// StatusError is returned for every non-2xx Graph response.
type StatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: status=%d, body=%s", e.Err, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// WrapError converts an HTTP status code to an appropriate error.
// Success codes yield nil.
func WrapError(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized:
		return ErrUnauthorised
	case statusCode == http.StatusForbidden:
		return ErrForbidden
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case statusCode == http.StatusBadRequest:
		return ErrBadRequest
	case statusCode >= 500:
		return ErrServerError
	default:
		return ErrUnexpectedStatus
	}
}
