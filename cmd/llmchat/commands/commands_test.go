package commands

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/strrl/llmchat/internal/devserver"
	"github.com/strrl/llmchat/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupHome points the data directory at a temp dir and writes a config
// that talks to a dev server.
func setupHome(t *testing.T) (configPath, storagePath string) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LLMCHAT_API_BASE_URL", "")

	ts := httptest.NewServer(devserver.NewServer(nil).Handler())
	t.Cleanup(ts.Close)

	storagePath = filepath.Join(home, "data", "storage.duckdb")
	configPath = filepath.Join(home, "config.yaml")
	content := "api_base_url: " + ts.URL + "/api\n" +
		"storage_path: " + storagePath + "\n" +
		"log_file: \"\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath, storagePath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSendShowReset(t *testing.T) {
	configPath, _ := setupHome(t)

	out, err := run(t, "send", "--config", configPath, "--env", "", "Hello", "there")
	require.NoError(t, err)
	assert.Contains(t, out, "Echo #1: Hello there")
	assert.Contains(t, out, "new session:")

	out, err = run(t, "send", "--config", configPath, "--env", "", "Again")
	require.NoError(t, err)
	assert.Contains(t, out, "Echo #2: Again")
	assert.NotContains(t, out, "new session:", "the stored session is reused")

	out, err = run(t, "show", "--config", configPath, "--env", "")
	require.NoError(t, err)
	assert.Contains(t, out, storage.SessionKey)
	assert.NotContains(t, out, "Session: (none)")

	out, err = run(t, "reset", "--config", configPath, "--env", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Session cleared")

	out, err = run(t, "show", "--config", configPath, "--env", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: (none)")
}

func TestSendWhitespaceDoesNothing(t *testing.T) {
	configPath, _ := setupHome(t)

	out, err := run(t, "send", "--config", configPath, "--env", "", "   ")

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSendReportsBackendFailure(t *testing.T) {
	configPath, _ := setupHome(t)

	out, err := run(t, "send", "--config", configPath, "--env", "", "--api-base-url", "http://127.0.0.1:1/api", "Hello")

	require.Error(t, err)
	assert.Contains(t, out, "Sorry, something went wrong")
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	setupHome(t)

	_, err := run(t, "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--env", "")

	assert.Error(t, err)
}

func TestLoadConfigFlagOverride(t *testing.T) {
	configPath, _ := setupHome(t)

	cfg, err := loadConfig(&rootOptions{configPath: configPath, apiBaseURL: "http://flag/api"})

	require.NoError(t, err)
	assert.Equal(t, "http://flag/api", cfg.APIBaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, loadDotEnv(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LLMCHAT_DOTENV_TEST=loaded\n"), 0o600))
	t.Setenv("LLMCHAT_DOTENV_TEST", "")
	os.Unsetenv("LLMCHAT_DOTENV_TEST")

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("LLMCHAT_DOTENV_TEST"))
}

func TestPrintOverview(t *testing.T) {
	var out bytes.Buffer
	items := []storage.Item{
		{Key: storage.SessionKey, Value: "abc123", UpdatedAt: time.Now()},
	}

	require.NoError(t, printOverview(&out, "http://api", "/data/storage.duckdb", items))

	assert.Contains(t, out.String(), "Session: abc123")
	assert.Contains(t, out.String(), "1. llm_session_id = abc123")
}

func TestPrintOverviewEmpty(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, printOverview(&out, "http://api", "/data/storage.duckdb", nil))

	assert.Contains(t, out.String(), "Session: (none)")
	assert.Contains(t, out.String(), "Local storage is empty")
}
