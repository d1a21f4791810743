package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Web.APIURL)
	assert.Equal(t, "http://backend:5000", cfg.Web.PublicAPIURL)
	assert.Equal(t, 60*time.Second, cfg.Cache.Duration)
	assert.Equal(t, 100*time.Millisecond, cfg.Web.MockLatency)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.False(t, cfg.Web.MockEnabled())
}

func TestParse_MockFlags(t *testing.T) {
	for _, key := range []string{"MOCK_API", "IS_CYPRESS_TEST"} {
		t.Run(key, func(t *testing.T) {
			cfg, err := parse(map[string]string{key: "true"})
			require.NoError(t, err)
			assert.True(t, cfg.Web.MockEnabled())
		})
	}
}

func TestParse_RejectsUnknownDriver(t *testing.T) {
	_, err := parse(map[string]string{"DB_DRIVER": "mysql"})
	assert.Error(t, err)

	cfg, err := parse(map[string]string{"DB_DRIVER": "SQLite"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: http://api.internal:5000
cache_duration: 5s
cors_allowed_origins:
  - http://a.example
  - http://b.example
web_addr: ":9999"
`), 0o644))

	t.Setenv("CATALOG_CONFIG", path)
	t.Setenv("WEB_ADDR", ":4000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:5000", cfg.Web.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Cache.Duration)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.API.AllowedOrigins)
	assert.Equal(t, ":4000", cfg.Web.Addr, "environment wins over the overlay")
}

func TestLoad_MissingOverlay(t *testing.T) {
	t.Setenv("CATALOG_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\n"), 0o644))

	t.Setenv("DB_DSN", "from_env")
	t.Chdir(tmp)

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
}
