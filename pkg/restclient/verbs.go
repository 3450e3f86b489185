package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/restpath/pkg/rest"
)

var operations = map[string]string{
	http.MethodGet:    "getting",
	http.MethodPost:   "posting",
	http.MethodPut:    "putting",
	http.MethodPatch:  "patching",
	http.MethodDelete: "deleting",
}

// resolve maps key through T's Path method.
func resolve[T rest.Pather[K], K any](key K) (string, error) {
	var mapping T

	return rest.ResolvePath[K](mapping, key)
}

// send encodes body (nil sends none) and performs one request.
func send(ctx context.Context, c *Client, method, path string, body interface{}, query rest.Query) (*rest.Response, error) {
	req := &rest.Request{
		Method: method,
		Path:   path,
		Query:  query,
	}

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w: %w", operations[method], path, rest.ErrSerialize, err)
		}

		req.Body = encoded
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", operations[method], path, err)
	}

	return resp, nil
}

// decode washes and unmarshals a response body.
func decode[R any](c *Client, resp *rest.Response) (R, error) {
	var out R

	text := c.wash(resp.Body)
	if strings.TrimSpace(text) == "" {
		return out, &rest.DecodeError{Body: text, Err: io.ErrUnexpectedEOF}
	}

	err := json.Unmarshal([]byte(text), &out)
	if err != nil {
		return out, &rest.DecodeError{Body: text, Err: err}
	}

	return out, nil
}

func bodyOf[T any](body *T) interface{} {
	if body == nil {
		return nil
	}

	return body
}

// fetch resolves, sends and decodes into R.
func fetch[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, method string, key K, body *T, query rest.Query) (*rest.Envelope[R], error) {
	path, err := resolve[T](key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operations[method], err)
	}

	resp, err := send(ctx, c, method, path, bodyOf(body), query)
	if err != nil {
		return nil, err
	}

	data, err := decode[R](c, resp)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", operations[method], path, err)
	}

	return &rest.Envelope[R]{
		Data:       data,
		StatusCode: resp.StatusCode,
		Header:     resp.Headers,
		URL:        resp.URL,
	}, nil
}

// exec resolves and sends, discarding the response body.
func exec[T rest.Pather[K], K any](ctx context.Context, c *Client, method string, key K, body *T, query rest.Query) error {
	path, err := resolve[T](key)
	if err != nil {
		return fmt.Errorf("%s: %w", operations[method], err)
	}

	_, err = send(ctx, c, method, path, bodyOf(body), query)

	return err
}

// Get fetches the resource T addressed by key.
func Get[T rest.Pather[K], K any](ctx context.Context, c *Client, key K) (T, error) {
	return GetWith[T](ctx, c, key, nil)
}

// GetWith fetches the resource T addressed by key with query parameters.
func GetWith[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, query rest.Query) (T, error) {
	envelope, err := fetch[T, T, K](ctx, c, http.MethodGet, key, nil, query)
	if err != nil {
		var zero T

		return zero, err
	}

	return envelope.Data, nil
}

// Post sends body to T's path.
func Post[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) error {
	return exec[T](ctx, c, http.MethodPost, key, body, nil)
}

// PostWith sends body to T's path with query parameters.
func PostWith[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) error {
	return exec[T](ctx, c, http.MethodPost, key, body, query)
}

// PostCapture sends body and decodes the response into R.
func PostCapture[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodPost, key, body, nil)
}

// PostCaptureWith sends body with query parameters and decodes the response into R.
func PostCaptureWith[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodPost, key, body, query)
}

// Put replaces the resource at T's path with body.
func Put[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) error {
	return exec[T](ctx, c, http.MethodPut, key, body, nil)
}

// PutWith replaces the resource at T's path with body, with query parameters.
func PutWith[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) error {
	return exec[T](ctx, c, http.MethodPut, key, body, query)
}

// PutCapture replaces the resource and decodes the response into R.
func PutCapture[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodPut, key, body, nil)
}

// PutCaptureWith is PutCapture with query parameters.
func PutCaptureWith[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodPut, key, body, query)
}

// Patch applies body to the resource at T's path.
func Patch[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) error {
	return exec[T](ctx, c, http.MethodPatch, key, body, nil)
}

// PatchWith is Patch with query parameters.
func PatchWith[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) error {
	return exec[T](ctx, c, http.MethodPatch, key, body, query)
}

// PatchCapture applies body and decodes the response into R.
func PatchCapture[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodPatch, key, body, nil)
}

// PatchCaptureWith is PatchCapture with query parameters.
func PatchCaptureWith[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodPatch, key, body, query)
}

// Delete removes the resource at T's path. No body is sent.
func Delete[T rest.Pather[K], K any](ctx context.Context, c *Client, key K) error {
	return exec[T](ctx, c, http.MethodDelete, key, nil, nil)
}

// DeleteWith sends a DELETE carrying body and query parameters.
func DeleteWith[T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) error {
	return exec[T](ctx, c, http.MethodDelete, key, body, query)
}

// DeleteCapture sends a DELETE carrying body and decodes the response into R.
func DeleteCapture[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodDelete, key, body, nil)
}

// DeleteCaptureWith is DeleteCapture with query parameters.
func DeleteCaptureWith[R any, T rest.Pather[K], K any](ctx context.Context, c *Client, key K, body *T, query rest.Query) (*rest.Envelope[R], error) {
	return fetch[R, T](ctx, c, http.MethodDelete, key, body, query)
}
