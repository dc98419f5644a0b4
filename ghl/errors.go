// ABOUTME: Error values shared by the GHL clients, token manager, and sync
// ABOUTME: APIError carries the status and body of a non-success GHL response
package ghl

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPayload = errors.New("invalid GHL payload")
	ErrNoToken        = errors.New("no GHL OAuth token stored: run 'hireos ghl token set' to authorize")
	ErrNoRefreshToken = errors.New("stored GHL token has no refresh token: re-authorize the app")
	ErrReauthorize    = errors.New("GHL rejected the refresh token: re-authorize the app")
)

// APIError is returned for any non-2xx GHL response.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GHL %s %s failed with status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GHL %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
