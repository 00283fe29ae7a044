package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
url = "https://example.com/docs/"
workers = 12
req_timeout = 3
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs/", cfg.URL)
	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, int64(5<<20), cfg.MaxBodyBytes)
	assert.Equal(t, "linkcheck/"+Version, cfg.UserAgent)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = \"many\""), 0o600))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, 6, cfg.Workers)
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")

	cfg.URL = "example.com"
	cfg.Workers = 0
	cfg.ReqTimeout = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be at least 1")
	assert.Contains(t, err.Error(), "req_timeout must be positive")
	assert.Contains(t, err.Error(), "not an absolute http(s) url")

	cfg = NewConfig()
	cfg.URL = "http://example.com"
	assert.NoError(t, cfg.Validate())
}
