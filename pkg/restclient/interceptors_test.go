package restclient_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/restpath/pkg/rest"
	"github.com/fivetwenty-io/restpath/pkg/restclient"
)

func TestClient_Cache(t *testing.T) {
	t.Parallel()

	t.Run("second get is served from cache", func(t *testing.T) {
		t.Parallel()

		cache := rest.NewMemoryCache(10)
		client, server := newTestClient(t, restclient.WithCache(cache, time.Minute))

		first, err := restclient.GetWith[HTTPBinGet](context.Background(), client, struct{}{}, rest.NewQuery("k", "v"))
		require.NoError(t, err)

		second, err := restclient.GetWith[HTTPBinGet](context.Background(), client, struct{}{}, rest.NewQuery("k", "v"))
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, server.Hits("/get"))
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("credentials separate entries", func(t *testing.T) {
		t.Parallel()

		cache := rest.NewMemoryCache(10)
		client, server := newTestClient(t, restclient.WithCache(cache, time.Minute))

		client.SetAuth("alice", "a")
		_, err := restclient.Get[HTTPBinGet](context.Background(), client, struct{}{})
		require.NoError(t, err)

		client.SetAuth("bob", "b")
		_, err = restclient.Get[HTTPBinGet](context.Background(), client, struct{}{})
		require.NoError(t, err)

		assert.Equal(t, 2, server.Hits("/get"))
	})

	t.Run("wrong password is not served from cache", func(t *testing.T) {
		t.Parallel()

		cache := rest.NewMemoryCache(10)
		client, server := newTestClient(t, restclient.WithCache(cache, time.Minute))
		key := [2]string{"username", "passwd"}

		client.SetAuth("username", "passwd")
		data, err := restclient.Get[HTTPBinBasicAuth](context.Background(), client, key)
		require.NoError(t, err)
		assert.True(t, data.Authenticated)

		client.SetAuth("username", "wrong_passwd")
		_, err = restclient.Get[HTTPBinBasicAuth](context.Background(), client, key)
		require.Error(t, err)
		assert.True(t, rest.IsAuthFailure(err))

		client.ClearAuth()
		_, err = restclient.Get[HTTPBinBasicAuth](context.Background(), client, key)
		require.Error(t, err)
		assert.True(t, rest.IsAuthFailure(err))

		assert.Equal(t, 3, server.Hits("/basic-auth/username/passwd"))
	})

	t.Run("header change misses cache", func(t *testing.T) {
		t.Parallel()

		cache := rest.NewMemoryCache(10)
		client, server := newTestClient(t, restclient.WithCache(cache, time.Minute))
		ctx := context.Background()

		require.NoError(t, client.SetHeader("X-Tenant", "a"))
		_, err := restclient.Get[HTTPBinGet](ctx, client, struct{}{})
		require.NoError(t, err)

		require.NoError(t, client.SetHeader("X-Tenant", "b"))
		_, err = restclient.Get[HTTPBinGet](ctx, client, struct{}{})
		require.NoError(t, err)

		require.NoError(t, client.SetHeader("X-Tenant", "a"))
		_, err = restclient.Get[HTTPBinGet](ctx, client, struct{}{})
		require.NoError(t, err)

		assert.Equal(t, 2, server.Hits("/get"))
	})

	t.Run("write invalidates the path", func(t *testing.T) {
		t.Parallel()

		cache := rest.NewMemoryCache(10)
		client, server := newTestClient(t, restclient.WithCache(cache, time.Minute))
		ctx := context.Background()

		_, err := restclient.Get[HTTPBinEcho](ctx, client, anythingKey("doc"))
		require.NoError(t, err)
		_, err = restclient.GetWith[HTTPBinEcho](ctx, client, anythingKey("doc"), rest.NewQuery("v", "2"))
		require.NoError(t, err)
		assert.Equal(t, 2, cache.Len())

		body := HTTPBinEcho{Data: "new"}
		require.NoError(t, restclient.Put(ctx, client, anythingKey("doc"), &body))
		assert.Equal(t, 0, cache.Len())

		_, err = restclient.Get[HTTPBinEcho](ctx, client, anythingKey("doc"))
		require.NoError(t, err)
		assert.Equal(t, 4, server.Hits("/anything/doc"))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		cache := rest.NewMemoryCache(10)
		client, _ := newTestClient(t, restclient.WithCache(cache, time.Minute))

		_, err := restclient.Get[HTTPBinStatus](context.Background(), client, http.StatusInternalServerError)
		require.Error(t, err)
		assert.Equal(t, 0, cache.Len())
	})
}

// anythingKey addresses /anything/{name} for HTTPBinEcho.
type anythingKey string

func (HTTPBinEcho) Path(name anythingKey) (string, error) {
	return "anything/" + string(name), nil
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	t.Run("metrics", func(t *testing.T) {
		t.Parallel()

		collector := rest.NewMetricsCollector()
		chain := rest.NewInterceptorChain()
		chain.AddRequestInterceptor(rest.MetricsRequestInterceptor(collector))
		chain.AddResponseInterceptor(rest.MetricsResponseInterceptor(collector))

		client, _ := newTestClient(t, restclient.WithInterceptors(chain))
		ctx := context.Background()

		require.NoError(t, restclient.Delete[HTTPBinDelete](ctx, client, struct{}{}))
		_, err := restclient.Get[HTTPBinStatus](ctx, client, http.StatusBadGateway)
		require.Error(t, err)

		deletes, ok := collector.GetMetrics("DELETE delete")
		require.True(t, ok)
		assert.Equal(t, int64(1), deletes.TotalRequests)
		assert.Equal(t, int64(0), deletes.TotalErrors)

		failures, ok := collector.GetMetrics("GET status/502")
		require.True(t, ok)
		assert.Equal(t, int64(1), failures.TotalErrors)
	})

	t.Run("headers", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t)
		client.Interceptors().AddRequestInterceptor(rest.HeaderInterceptor(map[string]string{"X-Trace": "abc"}))

		echo, err := restclient.Get[HTTPBinGet](context.Background(), client, struct{}{})
		require.NoError(t, err)
		assert.Equal(t, "abc", echo.Headers["X-Trace"])
	})

	t.Run("request interceptor error stops the call", func(t *testing.T) {
		t.Parallel()

		errBlocked := errors.New("blocked")
		client, server := newTestClient(t)
		client.Interceptors().AddRequestInterceptor(func(_ context.Context, _ *rest.Request) error {
			return errBlocked
		})

		err := restclient.Delete[HTTPBinDelete](context.Background(), client, struct{}{})
		require.ErrorIs(t, err, errBlocked)
		assert.Equal(t, 0, server.Hits("/delete"))
	})

	t.Run("circuit breaker opens on server errors", func(t *testing.T) {
		t.Parallel()

		breaker := rest.NewCircuitBreaker(&rest.CircuitBreakerConfig{
			Threshold:        2,
			Timeout:          time.Minute,
			SuccessThreshold: 1,
		})

		client, server := newTestClient(t)
		client.Interceptors().AddRequestInterceptor(rest.CircuitBreakerRequestInterceptor(breaker))
		client.Interceptors().AddResponseInterceptor(rest.CircuitBreakerResponseInterceptor(breaker))

		for range 2 {
			_, err := restclient.Get[HTTPBinStatus](context.Background(), client, http.StatusInternalServerError)
			require.Error(t, err)
		}

		assert.Equal(t, "open", breaker.State())

		_, err := restclient.Get[HTTPBinStatus](context.Background(), client, http.StatusInternalServerError)
		require.ErrorIs(t, err, rest.ErrCircuitBreakerOpen)
		assert.Equal(t, 2, server.Hits("/status/500"))
	})
}
