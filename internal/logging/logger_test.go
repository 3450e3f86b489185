package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/restpath/internal/logging"
	"github.com/fivetwenty-io/restpath/pkg/rest"
)

var _ rest.Logger = (*logging.Logger)(nil)

func TestLogger_JSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})
	logger.Debug("HTTP Request", map[string]interface{}{
		"method":      "DELETE",
		"status_code": 200,
		"duration":    1500 * time.Millisecond,
		"cached":      false,
		"error":       errors.New("boom"),
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "HTTP Request", line["message"])
	assert.Equal(t, "DELETE", line["method"])
	assert.InDelta(t, 200, line["status_code"], 0)
	assert.Equal(t, false, line["cached"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "time")
}

func TestLogger_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Level: "warn", Format: "json", Output: &buf})
	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", nil)
	logger.Error("shown", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestLogger_UnknownLevelIsInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Level: "loud", Format: "json", Output: &buf})
	logger.Debug("hidden", nil)
	assert.Empty(t, buf.String())

	logger.Info("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(logging.Config{Output: &buf, NoColor: true})
	logger.Info("Cache hit", map[string]interface{}{"url": "http://h/get"})

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "Cache hit")
	assert.Contains(t, out, "url=http://h/get")
}

func TestNewWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewWithLogger(zerolog.New(&buf))
	logger.Warn("wrapped", map[string]interface{}{"n": int64(3)})

	assert.Contains(t, buf.String(), `"n":3`)
	assert.Contains(t, buf.String(), `"message":"wrapped"`)
}
