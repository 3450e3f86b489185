package rest

import (
	"net/http"
	"time"
)

// Envelope is returned by capture variants: the decoded body
// together with what the transport saw.
type Envelope[T any] struct {
	// Data is the decoded response body.
	Data T
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header holds the response headers.
	Header http.Header
	// URL is the resolved request URL, including the query in submitted order.
	URL string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// BasicAuth holds HTTP basic-auth credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Config represents client configuration for building a restclient.Client.
//
// # Timeouts and retries
//
// Per-request cancellation is controlled via the context passed to each
// operation. Timeout additionally bounds every request made by the client.
// Retries are off by default: a 5xx or 429 is returned to the caller as an
// HTTPError. Setting RetryMax > 0 retries those responses and connection
// errors with exponential backoff between RetryWaitMin and RetryWaitMax.
type Config struct {
	// BaseURL is the absolute http(s) URL every path is resolved against.
	// Its own path, if any, is kept as a prefix.
	BaseURL string

	// Username and Password enable HTTP basic auth when Username is set.
	Username string
	Password string

	// Headers are sent with every request.
	Headers map[string]string
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
	// RetryMax is the maximum number of retries for transient failures.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger used by the HTTP layer.
	Logger Logger

	// Cache enables GET response caching when set.
	Cache Cache
	// CacheTTL is the lifetime of cached entries. Zero uses the default.
	CacheTTL time.Duration
}
