package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/restpath/internal/constants"
	"github.com/fivetwenty-io/restpath/internal/httpbin"
	"github.com/fivetwenty-io/restpath/pkg/rest"
)

// These tests share viper's global state and must not run in parallel.

func setupViper(t *testing.T, values map[string]interface{}) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("output", constants.FormatJSON)
	viper.Set("timeout", constants.ShortHTTPTimeout)

	for key, value := range values {
		viper.Set(key, value)
	}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	setupViper(t, map[string]interface{}{
		"base-url": server.URL,
		"user":     "username",
		"password": "passwd",
	})

	out, err := execute(t, NewGetCommand(), "basic-auth/username/passwd")
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":true,"user":"username"}`, out)
}

func TestGetCommand_PromptsForPassword(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	setupViper(t, map[string]interface{}{
		"base-url": server.URL,
		"user":     "username",
	})

	original := readPassword
	readPassword = func() (string, error) { return "passwd", nil }

	t.Cleanup(func() { readPassword = original })

	out, err := execute(t, NewGetCommand(), "/basic-auth/username/passwd")
	require.NoError(t, err)
	assert.Contains(t, out, `"authenticated": true`)
}

func TestGetCommand_AuthFailure(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	setupViper(t, map[string]interface{}{
		"base-url": server.URL,
		"user":     "username",
		"password": "wrong",
	})

	_, err := execute(t, NewGetCommand(), "basic-auth/username/passwd")
	require.Error(t, err)
	assert.True(t, rest.IsAuthFailure(err))
}

func TestGetCommand_QueryAndHeaders(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	setupViper(t, map[string]interface{}{"base-url": server.URL})

	out, err := execute(t, NewGetCommand(), "get", "-q", "b=abcd", "-q", "a=2", "-H", "X-Team: platform")
	require.NoError(t, err)

	var echo httpbin.EchoResponse
	require.NoError(t, json.Unmarshal([]byte(out), &echo))
	assert.Equal(t, server.URL+"/get?b=abcd&a=2", echo.URL)
	assert.Equal(t, "platform", echo.Headers["X-Team"])
}

func TestDeleteCommand(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	setupViper(t, map[string]interface{}{"base-url": server.URL})

	out, err := execute(t, NewDeleteCommand(), "delete")
	require.NoError(t, err)
	assert.Equal(t, "DELETE delete: OK\n", out)

	out, err = execute(t, NewDeleteCommand(), "delete", "--data", `{"data":"test data"}`, "-q", "a=2", "-q", "b=abcd", "--capture")
	require.NoError(t, err)

	var captured struct {
		Status int    `json:"status"`
		URL    string `json:"url"`
		Body   struct {
			JSON struct {
				Data string `json:"data"`
			} `json:"json"`
			URL string `json:"url"`
		} `json:"body"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &captured))
	assert.Equal(t, 200, captured.Status)
	assert.Equal(t, server.URL+"/delete?a=2&b=abcd", captured.URL)
	assert.Equal(t, server.URL+"/delete?a=2&b=abcd", captured.Body.URL)
	assert.Equal(t, "test data", captured.Body.JSON.Data)
	assert.Equal(t, 2, server.Hits("/delete"))
}

func TestWriteCommands(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	tests := []struct {
		name string
		cmd  func() *cobra.Command
		path string
	}{
		{name: "post", cmd: NewPostCommand, path: "post"},
		{name: "put", cmd: NewPutCommand, path: "put"},
		{name: "patch", cmd: NewPatchCommand, path: "patch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupViper(t, map[string]interface{}{"base-url": server.URL, "output": constants.FormatYAML})

			out, err := execute(t, tt.cmd(), tt.path, "-d", `{"data":"x"}`, "--capture")
			require.NoError(t, err)

			var captured map[string]interface{}
			require.NoError(t, yaml.Unmarshal([]byte(out), &captured))
			assert.Equal(t, 200, captured["status"])
			assert.Equal(t, server.URL+"/"+tt.path, captured["url"])
		})
	}
}

func TestRequestCommand_Errors(t *testing.T) {
	server := httpbin.NewServer()
	defer server.Close()

	t.Run("missing base url", func(t *testing.T) {
		setupViper(t, nil)

		_, err := execute(t, NewGetCommand(), "get")
		require.ErrorIs(t, err, constants.ErrBaseURLRequired)
	})

	t.Run("bad output", func(t *testing.T) {
		setupViper(t, map[string]interface{}{"base-url": server.URL, "output": "xml"})

		_, err := execute(t, NewGetCommand(), "get")
		require.ErrorIs(t, err, constants.ErrInvalidOutput)
	})

	t.Run("bad query", func(t *testing.T) {
		setupViper(t, map[string]interface{}{"base-url": server.URL})

		_, err := execute(t, NewDeleteCommand(), "delete", "-q", "novalue")
		require.ErrorIs(t, err, constants.ErrInvalidQueryFlag)
	})

	t.Run("bad data", func(t *testing.T) {
		setupViper(t, map[string]interface{}{"base-url": server.URL})

		_, err := execute(t, NewPostCommand(), "post", "-d", "{")
		require.ErrorIs(t, err, constants.ErrInvalidDataFlag)
		assert.Equal(t, 0, server.Hits("/post"))
	})

	t.Run("unknown cache", func(t *testing.T) {
		setupViper(t, map[string]interface{}{"base-url": server.URL, "cache": "redis"})

		_, err := execute(t, NewGetCommand(), "get")
		require.ErrorIs(t, err, rest.ErrUnsupportedCacheType)
	})

	t.Run("server error", func(t *testing.T) {
		setupViper(t, map[string]interface{}{"base-url": server.URL})

		_, err := execute(t, NewGetCommand(), "status/404")
		assert.True(t, rest.IsNotFound(err))
	})
}

func TestConfigCommands(t *testing.T) {
	setupViper(t, map[string]interface{}{
		"base-url": "https://httpbin.org",
		"user":     "username",
		"password": "passwd",
		"retry":    2,
		"cache":    "memory",
	})

	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	require.Len(t, cmd.Commands(), 2)

	out, err := execute(t, NewConfigCommand(), "show")
	require.NoError(t, err)

	var shown Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "https://httpbin.org", shown.BaseURL)
	assert.Equal(t, Masked, shown.Password)
	assert.Equal(t, 2, shown.Retry)
	assert.Equal(t, "10s", shown.Timeout)

	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	_, err = execute(t, NewConfigCommand(), "init", "--path", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "https://httpbin.org", saved.BaseURL)
	assert.Equal(t, "username", saved.User)
	assert.Empty(t, saved.Password)
	assert.Equal(t, "memory", saved.Cache)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())
}

func TestVersionCommand(t *testing.T) {
	setupViper(t, nil)

	out, err := execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc123","built":"2026-01-01"}`, out)

	viper.Set("output", constants.FormatTable)

	out, err = execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"))
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}
