package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors a caller can test for with errors.Is, independent of
// which registry in a Chain actually produced the failure.
var (
	// ErrNotFound means the registry responded 404 for a module or version.
	ErrNotFound = errors.New("registry: not found")
	// ErrRateLimited means the registry responded 429.
	ErrRateLimited = errors.New("registry: rate limited")
	// ErrUnauthorized means the registry responded 401 or 403.
	ErrUnauthorized = errors.New("registry: unauthorized")
)

// StatusError reports a non-200 HTTP response from a registry fetch.
type StatusError struct {
	StatusCode int
	ModuleName string
	Version    string
	URL        string
}

func (e *StatusError) Error() string {
	if e.ModuleName != "" && e.Version != "" {
		return fmt.Sprintf("registry: status %d for %s@%s", e.StatusCode, e.ModuleName, e.Version)
	}
	if e.ModuleName != "" {
		return fmt.Sprintf("registry: status %d for %s", e.StatusCode, e.ModuleName)
	}
	return fmt.Sprintf("registry: status %d for %s", e.StatusCode, e.URL)
}

// Is maps the HTTP status code to one of the package's sentinel errors, so
// errors.Is(err, registry.ErrNotFound) works regardless of which registry
// in a chain produced the StatusError.
func (e *StatusError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == ErrUnauthorized
	}
	return false
}

// Retryable reports whether a repeat of the same request might succeed.
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsNotFound reports whether err (possibly wrapped) represents a 404 from a
// registry fetch.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
