package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/restpath/internal/constants"
	"github.com/fivetwenty-io/restpath/internal/logging"
	"github.com/fivetwenty-io/restpath/pkg/rest"
	"github.com/fivetwenty-io/restpath/pkg/restclient"
)

// readPassword is swapped out in tests.
var readPassword = func() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	password, err := term.ReadPassword(fd)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// newLogger builds the stderr logger for --verbose.
func newLogger() *logging.Logger {
	return logging.New(logging.Config{
		Level:  "debug",
		Format: viper.GetString("log-format"),
	})
}

// newCache builds the response cache selected with --cache. The returned
// function releases it.
func newCache(ctx context.Context) (rest.Cache, func(), error) {
	cacheType := rest.CacheType(strings.ToLower(viper.GetString("cache")))
	if cacheType == "" || cacheType == rest.CacheTypeNone {
		return nil, func() {}, nil
	}

	config := rest.DefaultCacheConfig()
	config.Type = cacheType
	config.Memory.CleanupInterval = ""

	if cacheType == rest.CacheTypeNATS {
		config.NATS = &rest.NATSKVConfig{
			URL:    viper.GetString("nats-url"),
			Bucket: constants.DefaultNATSBucket,
			TTL:    constants.DefaultCacheTTL,
		}
	}

	cache, err := rest.NewCacheFromConfig(ctx, config)
	if err != nil {
		return nil, nil, fmt.Errorf("creating cache: %w", err)
	}

	release := func() {}
	if closer, ok := cache.(interface{ Close() error }); ok {
		release = func() { _ = closer.Close() }
	}

	return cache, release, nil
}

// newClient builds a client from flags, environment and config file.
func newClient(ctx context.Context, headers map[string]string) (*restclient.Client, func(), error) {
	baseURL := viper.GetString("base-url")
	if baseURL == "" {
		return nil, nil, constants.ErrBaseURLRequired
	}

	config := &rest.Config{
		BaseURL: baseURL,
		Headers: headers,
		Timeout: viper.GetDuration("timeout"),
	}

	if retries := viper.GetInt("retry"); retries > 0 {
		config.RetryMax = retries
		config.RetryWaitMin = constants.DefaultRetryWaitMin
		config.RetryWaitMax = constants.DefaultRetryWaitMax
	}

	if viper.GetBool("verbose") {
		config.Logger = newLogger()
		config.Debug = true
	}

	if user := viper.GetString("user"); user != "" {
		password := viper.GetString("password")
		if password == "" {
			var err error

			password, err = readPassword()
			if err != nil {
				return nil, nil, err
			}
		}

		config.Username = user
		config.Password = password
	}

	cache, release, err := newCache(ctx)
	if err != nil {
		return nil, nil, err
	}

	config.Cache = cache

	client, err := restclient.NewWithConfig(config)
	if err != nil {
		release()

		return nil, nil, err
	}

	if config.Logger != nil {
		client.Interceptors().AddResponseInterceptor(rest.LoggingResponseInterceptor(config.Logger))
	}

	return client, release, nil
}
