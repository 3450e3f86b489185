//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const defaultHTTPBinURL = "https://httpbin.org"

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL    string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	baseURL := os.Getenv("HTTPBIN_URL")
	if baseURL == "" {
		baseURL = defaultHTTPBinURL
	}

	return &TestConfig{
		BaseURL:    baseURL,
		BinaryPath: binaryPath(),
		Verbose:    os.Getenv("RESTPATH_TEST_VERBOSE") == "true",
	}
}

// binaryPath determines the path to the restpath binary
func binaryPath() string {
	if path := os.Getenv("RESTPATH_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../restpath", "./restpath", "../restpath"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "restpath"
}

// SkipIfNoBinary skips CLI tests when the binary has not been built.
func (config *TestConfig) SkipIfNoBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("restpath binary not found at %s, skipping CLI test", config.BinaryPath)
	}
}

// CommandRunner runs the restpath binary against the configured base URL.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a restpath command and returns its output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--base-url", runner.config.BaseURL}, args...)

	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+runner.t.TempDir())

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput checks that output is valid JSON and decodes it.
func AssertJSONOutput(t *testing.T, output string, target interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal([]byte(output), target), "output is not valid JSON: %s", output)
}
