package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are disabled unless a caller opts in.
const (
	// DefaultRetryMax is the number of retries used when retries are enabled without a count.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// HTTP status code boundaries.
const (
	// HTTPStatusSuccessMin is the lowest 2xx status.
	HTTPStatusSuccessMin = 200

	// HTTPStatusSuccessMax is the first status past the 2xx range.
	HTTPStatusSuccessMax = 300

	// HTTPStatusServerError is the first 5xx status.
	HTTPStatusServerError = 500
)

// Cache limits.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024

	// DefaultNATSBucket is the key-value bucket used by the NATS cache.
	DefaultNATSBucket = "restpath-cache"
)

// Circuit breaker settings.
const (
	// CircuitBreakerThreshold is the failure threshold for circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the timeout for circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)

// State and status constants.
const (
	// StatusClosed represents a closed circuit.
	StatusClosed = "closed"

	// StatusOpen represents an open circuit.
	StatusOpen = "open"

	// StatusHalfOpen represents a half-open circuit.
	StatusHalfOpen = "half-open"
)

// Format constants.
const (
	// FormatJSON is the JSON output format.
	FormatJSON = "json"

	// FormatYAML is the YAML output format.
	FormatYAML = "yaml"

	// FormatTable is the table output format.
	FormatTable = "table"
)

// Header and content constants.
const (
	// ContentTypeJSON is the media type for request and response bodies.
	ContentTypeJSON = "application/json"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "restpath/1.0"

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"

	// MaxLoggedBodyLength bounds the body excerpt written to debug logs.
	MaxLoggedBodyLength = 1024
)

// Environment and config constants.
const (
	// EnvPrefix is the prefix for environment variables read by the CLI.
	EnvPrefix = "RESTPATH"

	// ConfigDirName is the directory under $HOME holding the CLI config.
	ConfigDirName = ".restpath"

	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"

	// KeyValueParts is the number of parts in a key=value flag.
	KeyValueParts = 2
)
