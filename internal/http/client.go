// Package http is the transport under restclient: URL resolution, auth and
// header handling, retries through go-retryablehttp, and status
// classification.
package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/restpath/internal/constants"
	"github.com/fivetwenty-io/restpath/pkg/rest"
)

// Request is a single HTTP exchange relative to the client's base URL.
// Body is sent as is when it is a []byte or json.RawMessage and JSON-encoded
// otherwise.
type Request struct {
	Method  string
	Path    string
	Query   rest.Query
	Body    interface{}
	Headers http.Header
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
	URL        string
}

// Client sends requests against one base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *retryablehttp.Client
	logger     rest.Logger
	debug      bool
	userAgent  string

	mu      sync.RWMutex
	auth    *rest.BasicAuth
	headers http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output and retry notices.
func WithLogger(logger rest.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithRetryConfig enables retries of 5xx, 429 and connection failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// ParseBaseURL validates a base URL: absolute, http or https, with a host.
// Query and fragment are dropped.
func ParseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, rest.ErrBaseURLRequired
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rest.ErrInvalidBaseURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", rest.ErrInvalidBaseURL, parsed.Scheme)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: no host in %q", rest.ErrInvalidBaseURL, raw)
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawPath = ""

	return parsed, nil
}

// NewClient creates a transport for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		userAgent:  constants.DefaultUserAgent,
		headers:    make(http.Header),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil && httpClient.RetryMax > 0 {
		httpClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetBasicAuth sets the credentials sent with every subsequent request.
func (c *Client) SetBasicAuth(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auth = &rest.BasicAuth{Username: username, Password: password}
}

// ClearBasicAuth stops sending credentials.
func (c *Client) ClearBasicAuth() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auth = nil
}

// Username returns the basic-auth user, or "" when unauthenticated.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.auth == nil {
		return ""
	}

	return c.auth.Username
}

// Fingerprint digests the credentials and headers a request carrying extra
// would be sent with. Two requests share a fingerprint only when both send
// the same Authorization and the same caller-set headers.
func (c *Client) Fingerprint(extra http.Header) string {
	merged := make(http.Header)

	c.mu.RLock()
	for name, values := range c.headers {
		merged[name] = values
	}

	auth := c.auth
	c.mu.RUnlock()

	for name, values := range extra {
		merged[http.CanonicalHeaderKey(name)] = values
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}

	sort.Strings(names)

	hash := sha256.New()

	if auth != nil {
		fmt.Fprintf(hash, "auth\x00%s\x00%s\x00", auth.Username, auth.Password)
	}

	for _, name := range names {
		fmt.Fprintf(hash, "%s\x00%s\x00", name, strings.Join(merged[name], "\x00"))
	}

	return hex.EncodeToString(hash.Sum(nil))
}

// SetHeader sets a header sent with every request. Validation is the
// caller's job.
func (c *Client) SetHeader(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.headers.Set(name, value)
}

// ClearHeaders removes all default headers.
func (c *Client) ClearHeaders() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.headers = make(http.Header)
}

// ResolveURL joins path and query onto the base URL. path may carry its own
// query string, which comes before query.
func (c *Client) ResolveURL(path string, query rest.Query) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", rest.ErrInvalidPath, err)
	}

	if ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("%w: %q is not relative", rest.ErrInvalidPath, path)
	}

	resolved := *c.baseURL
	resolved.Path = c.baseURL.Path + "/" + ref.Path
	resolved.RawPath = ""

	if ref.RawPath != "" {
		resolved.RawPath = c.baseURL.EscapedPath() + "/" + ref.RawPath
	}

	rawQuery := ref.RawQuery
	if encoded := query.Encode(); encoded != "" {
		if rawQuery != "" {
			rawQuery += "&"
		}

		rawQuery += encoded
	}

	resolved.RawQuery = rawQuery

	return resolved.String(), nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch typed := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return typed, nil
	case json.RawMessage:
		return typed, nil
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", rest.ErrSerialize, err)
		}

		return encoded, nil
	}
}

func (c *Client) applyHeaders(httpReq *retryablehttp.Request, req *Request, hasBody bool) {
	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(constants.RequestIDHeader, uuid.NewString())

	if hasBody {
		httpReq.Header.Set("Content-Type", constants.ContentTypeJSON)
	}

	c.mu.RLock()
	for name, values := range c.headers {
		httpReq.Header[name] = append([]string(nil), values...)
	}

	auth := c.auth
	c.mu.RUnlock()

	for name, values := range req.Headers {
		httpReq.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}

	if auth != nil {
		httpReq.SetBasicAuth(auth.Username, auth.Password)
	}
}

// Do performs req. A response outside the 2xx range is returned together
// with a *rest.HTTPError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.ResolveURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", rest.ErrRequest, err)
	}

	c.applyHeaders(httpReq, req, body != nil)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": httpReq.Header.Get(constants.RequestIDHeader),
			"body":       truncate(body),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(req.Method, fullURL, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", rest.ErrRequest, err)
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       respBody,
		URL:        fullURL,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": httpResp.StatusCode,
			"url":         fullURL,
			"duration":    time.Since(start).String(),
			"body":        truncate(respBody),
		})
	}

	if httpResp.StatusCode < constants.HTTPStatusSuccessMin || httpResp.StatusCode >= constants.HTTPStatusSuccessMax {
		return response, &rest.HTTPError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       string(respBody),
			URL:        fullURL,
		}
	}

	return response, nil
}

func classifyTransportError(method, fullURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s %s: %w", rest.ErrTimeout, method, fullURL, err)
	}

	return fmt.Errorf("%w: %s %s: %w", rest.ErrRequest, method, fullURL, err)
}

func truncate(body []byte) string {
	if len(body) > constants.MaxLoggedBodyLength {
		return string(body[:constants.MaxLoggedBodyLength]) + "..."
	}

	return string(body)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query rest.Query) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request without a body.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// leveledLogger adapts rest.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger rest.Logger
}

func fieldsFrom(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFrom(keysAndValues))
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)
