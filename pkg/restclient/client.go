// Package restclient provides the typed REST client: construct one Client per
// base URL, then call the generic verb functions with a path-mapping type and
// its key.
package restclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/fivetwenty-io/restpath/internal/constants"
	resthttp "github.com/fivetwenty-io/restpath/internal/http"
	"github.com/fivetwenty-io/restpath/pkg/rest"
)

// Client is a REST client bound to one base URL. It is safe for concurrent
// use; setters take effect for requests started after they return.
type Client struct {
	transport    *resthttp.Client
	interceptors *rest.InterceptorChain
	logger       rest.Logger

	cache    rest.Cache
	cacheTTL time.Duration

	mu        sync.RWMutex
	bodyWash  func(string) string
	transOpts []resthttp.Option
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by the transport.
func WithLogger(logger rest.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.transOpts = append(c.transOpts, resthttp.WithLogger(logger))
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.transOpts = append(c.transOpts, resthttp.WithDebug(debug))
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.transOpts = append(c.transOpts, resthttp.WithUserAgent(userAgent))
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.transOpts = append(c.transOpts, resthttp.WithTimeout(timeout))
	}
}

// WithRetry enables retries of 5xx, 429 and connection failures.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		c.transOpts = append(c.transOpts, resthttp.WithRetryConfig(retryMax, waitMin, waitMax))
	}
}

// WithCache caches successful GET responses for ttl.
func WithCache(cache rest.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithInterceptors attaches request and response interceptors.
func WithInterceptors(chain *rest.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// New creates a client for baseURL. The URL must be absolute http or https.
func New(baseURL string, opts ...Option) (*Client, error) {
	client := &Client{
		interceptors: rest.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	transport, err := resthttp.NewClient(baseURL, client.transOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	client.transport = transport
	client.transOpts = nil

	return client, nil
}

// NewWithConfig creates a client from a Config.
func NewWithConfig(config *rest.Config) (*Client, error) {
	if config == nil {
		return nil, rest.ErrConfigRequired
	}

	var opts []Option

	if config.Logger != nil {
		opts = append(opts, WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, WithUserAgent(config.UserAgent))
	}

	if config.Timeout > 0 {
		opts = append(opts, WithTimeout(config.Timeout))
	}

	if config.RetryMax > 0 {
		opts = append(opts, WithRetry(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.Cache != nil {
		opts = append(opts, WithCache(config.Cache, config.CacheTTL))
	}

	client, err := New(config.BaseURL, opts...)
	if err != nil {
		return nil, err
	}

	if config.Username != "" {
		client.SetAuth(config.Username, config.Password)
	}

	for name, value := range config.Headers {
		err = client.SetHeader(name, value)
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL()
}

// SetAuth sets basic-auth credentials for all subsequent requests.
func (c *Client) SetAuth(username, password string) {
	c.transport.SetBasicAuth(username, password)
}

// ClearAuth removes the basic-auth credentials.
func (c *Client) ClearAuth() {
	c.transport.ClearBasicAuth()
}

// SetHeader sets a header sent with every request.
func (c *Client) SetHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: name %q", rest.ErrInvalidHeader, name)
	}

	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: value for %q", rest.ErrInvalidHeader, name)
	}

	c.transport.SetHeader(name, value)

	return nil
}

// ClearHeaders removes all headers set with SetHeader.
func (c *Client) ClearHeaders() {
	c.transport.ClearHeaders()
}

// SetBodyWash installs a transform applied to response text before it is
// decoded. Pass nil to remove it.
func (c *Client) SetBodyWash(wash func(string) string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bodyWash = wash
}

// Interceptors returns the chain run around every request.
func (c *Client) Interceptors() *rest.InterceptorChain {
	return c.interceptors
}

// wash applies the body-wash function, if any.
func (c *Client) wash(body []byte) string {
	c.mu.RLock()
	wash := c.bodyWash
	c.mu.RUnlock()

	if wash == nil {
		return string(body)
	}

	return wash(string(body))
}

// Do sends one request and returns the raw response. Path is relative to
// the base URL. Non-2xx responses come back with a *rest.HTTPError, and
// the response is still returned so callers can inspect the body.
func (c *Client) Do(ctx context.Context, req *rest.Request) (*rest.Response, error) {
	if req.Headers == nil {
		req.Headers = make(http.Header)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	fullURL, err := c.transport.ResolveURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	if cached := c.lookupCache(ctx, req, fullURL); cached != nil {
		return cached, c.interceptors.ExecuteResponseInterceptors(ctx, req, cached)
	}

	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	transportResp, doErr := c.transport.Do(ctx, &resthttp.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Body:    body,
		Headers: req.Headers,
	})

	resp := &rest.Response{URL: fullURL, Error: doErr}
	if transportResp != nil {
		resp.StatusCode = transportResp.StatusCode
		resp.Headers = transportResp.Headers
		resp.Body = transportResp.Body
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return resp, errors.Join(doErr, err)
	}

	if doErr != nil {
		if transportResp == nil {
			return nil, doErr
		}

		return resp, doErr
	}

	c.storeCache(ctx, req, resp)

	return resp, nil
}

func (c *Client) cacheKey(method, fullURL string, headers http.Header) string {
	return rest.CacheKey(method, fullURL, c.transport.Fingerprint(headers))
}

func (c *Client) lookupCache(ctx context.Context, req *rest.Request, fullURL string) *rest.Response {
	if c.cache == nil || req.Method != http.MethodGet {
		return nil
	}

	entry, err := c.cache.Get(ctx, c.cacheKey(req.Method, fullURL, req.Headers))
	if err != nil {
		return nil
	}

	if c.logger != nil {
		c.logger.Debug("Cache hit", map[string]interface{}{"url": fullURL})
	}

	header := make(http.Header)
	if entry.ETag != "" {
		header.Set("ETag", entry.ETag)
	}

	return &rest.Response{
		StatusCode: http.StatusOK,
		Headers:    header,
		Body:       entry.Data,
		URL:        fullURL,
	}
}

func (c *Client) storeCache(ctx context.Context, req *rest.Request, resp *rest.Response) {
	if c.cache == nil {
		return
	}

	if req.Method != http.MethodGet {
		c.invalidateCache(ctx, resp.URL, req.Headers)

		return
	}

	err := c.cache.Set(ctx, c.cacheKey(req.Method, resp.URL, req.Headers), &rest.CacheEntry{
		Data:      resp.Body,
		ExpiresAt: time.Now().Add(c.cacheTTL),
		ETag:      resp.Headers.Get("ETag"),
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("Cache write failed", map[string]interface{}{"url": resp.URL, "error": err.Error()})
	}
}

// invalidateCache drops cached GETs of the path a write just touched.
func (c *Client) invalidateCache(ctx context.Context, fullURL string, headers http.Header) {
	withoutQuery, _, _ := strings.Cut(fullURL, "?")
	prefix := rest.PathCacheKeyPrefix(http.MethodGet, withoutQuery)

	if deleter, ok := c.cache.(rest.PrefixDeleter); ok {
		_ = deleter.DeletePrefix(ctx, prefix+"|")
		_ = deleter.DeletePrefix(ctx, prefix+"?")
	}

	// Hashed backends only support exact keys.
	_ = c.cache.Delete(ctx, c.cacheKey(http.MethodGet, withoutQuery, headers))
}
