package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance. Operations wrap one of these so callers
// can branch with errors.Is.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrBaseURLRequired    = errors.New("base URL is required")
	ErrInvalidBaseURL     = errors.New("invalid base URL")
	ErrInvalidPath        = errors.New("invalid path")
	ErrEmptyPath          = errors.New("path mapping returned an empty path")
	ErrInvalidHeader      = errors.New("invalid header")
	ErrSerialize          = errors.New("failed to serialize request body")
	ErrDeserialize        = errors.New("failed to deserialize response body")
	ErrTimeout            = errors.New("request timed out")
	ErrRequest            = errors.New("request failed")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Cache errors.
var (
	ErrCacheKeyNotFound      = errors.New("key not found")
	ErrCacheEntryExpired     = errors.New("entry expired")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheValueTooLarge    = errors.New("cache value too large")
)

// HTTPError is returned for any response outside the 2xx range. It carries
// the numeric status and the raw response body.
type HTTPError struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Status     string `json:"status"      yaml:"status"`
	Body       string `json:"body"        yaml:"body"`
	URL        string `json:"url"         yaml:"url"`
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	if e.Body == "" {
		return fmt.Sprintf("HTTP error: %s", status)
	}

	return fmt.Sprintf("HTTP error: %s: %s", status, e.Body)
}

// DecodeError is returned when a response body cannot be decoded into the
// requested type. Body holds the text that failed to decode, after washing.
type DecodeError struct {
	Body string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDeserialize, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports DecodeError as ErrDeserialize.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDeserialize
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}

	return 0, false
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	code, ok := StatusCode(err)

	return ok && code == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	code, ok := StatusCode(err)

	return ok && code == http.StatusForbidden
}

// IsAuthFailure checks if the error is either a 401 or a 403 response.
func IsAuthFailure(err error) bool {
	return IsUnauthorized(err) || IsForbidden(err)
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	code, ok := StatusCode(err)

	return ok && code == http.StatusNotFound
}

// IsTimeout checks if the error is a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
