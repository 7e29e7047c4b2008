package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("BACKEND_URL", "")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, c.Backend.BaseURL)
	assert.Equal(t, 60*time.Second, c.Backend.Timeout)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "memory", c.Storage.Type)
	assert.Equal(t, 24*time.Hour, c.Session.TTL)
	assert.True(t, c.Metrics.Enabled)
	assert.Greater(t, c.Server.WriteTimeout, 2*c.Backend.Timeout)
	assert.Same(t, c, Get())
}

func TestLoadRejectsWriteTimeoutBelowChainedBackendCalls(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  write_timeout: 120s
backend:
  timeout: 60s
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write_timeout")
}

func TestShippedConfigLoads(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	c, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Greater(t, c.Server.WriteTimeout, 2*c.Backend.Timeout)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
backend:
  base_url: http://scoring:8000/
  timeout: 5s
storage:
  type: disk
  data_dir: /tmp/advisor
log:
  level: debug
`), 0644))

	t.Setenv("BACKEND_URL", "")
	t.Setenv("ADVISOR_LOG_FORMAT", "json")
	t.Setenv("ADVISOR_SERVER_PORT", "7070")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, c.Server.Port)
	assert.Equal(t, "http://scoring:8000", c.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, c.Backend.Timeout)
	assert.Equal(t, "disk", c.Storage.Type)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
}

func TestBackendURLShortcut(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.internal:9000")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:9000", c.Backend.BaseURL)

	t.Setenv("ADVISOR_BACKEND_BASE_URL", "http://explicit:1")
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://explicit:1", c.Backend.BaseURL)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("ADVISOR_STORAGE_TYPE", "tape")

	_, err := Load("")
	assert.ErrorContains(t, err, "unknown storage type")
}
