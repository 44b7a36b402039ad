//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Host        string
	Username    string
	Password    string
	WAPIVersion string
	Network     string
	Zone        string
	WapiPath    string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Host:        os.Getenv("WAPI_IT_HOST"),
		Username:    os.Getenv("WAPI_IT_USERNAME"),
		Password:    os.Getenv("WAPI_IT_PASSWORD"),
		WAPIVersion: os.Getenv("WAPI_IT_VERSION"),
		Network:     os.Getenv("WAPI_IT_NETWORK"),
		Zone:        os.Getenv("WAPI_IT_ZONE"),
		WapiPath:    getWapiPath(),
		Verbose:     os.Getenv("WAPI_IT_VERBOSE") == "true",
	}
}

// getWapiPath determines the path to the wapi binary
func getWapiPath() string {
	if path := os.Getenv("WAPI_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../wapi", "./wapi", "../wapi"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "wapi"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Host == "" || config.Username == "" || config.Password == "" {
		t.Skip("WAPI_IT_HOST, WAPI_IT_USERNAME and WAPI_IT_PASSWORD must be set, skipping integration test")
	}

	if _, err := exec.LookPath(config.WapiPath); err != nil {
		t.Skipf("wapi binary not found at %s, skipping integration test", config.WapiPath)
	}
}

// CommandRunner runs wapi commands against the configured grid master
// with an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a wapi command and returns its output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	full := []string{
		"--config", runner.configFile,
		"--host", runner.config.Host,
		"--username", runner.config.Username,
		"--insecure",
	}

	if runner.config.WAPIVersion != "" {
		full = append(full, "--wapi-version", runner.config.WAPIVersion)
	}

	full = append(full, args...)

	cmd := exec.Command(runner.config.WapiPath, full...)
	cmd.Env = append(os.Environ(), "WAPI_PASSWORD="+runner.config.Password)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.WapiPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique host name inside zone
func GenerateTestName(prefix, zone string) string {
	return fmt.Sprintf("%s-%d.%s", prefix, time.Now().UnixNano(), zone)
}

// CleanupHost attempts to delete a host record left behind by a test
func (runner *CommandRunner) CleanupHost(name string) {
	stdout, stderr, err := runner.Run("hosts", "delete", name)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for host %s: %s\nStderr: %s", name, stdout, stderr)
	}
}

// DecodeJSON decodes command output, failing the test when it is not JSON
func DecodeJSON(t *testing.T, output string, v interface{}) {
	t.Helper()

	err := json.Unmarshal([]byte(output), v)
	if err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var v interface{}

	err := yaml.Unmarshal([]byte(output), &v)
	if err != nil || v == nil {
		t.Errorf("Output does not appear to be YAML: %s", output)
	}
}
