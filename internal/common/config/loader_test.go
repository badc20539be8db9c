// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: claimcheck\n")

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultAPITimeout, cfg.APITimeout())
	assert.Equal(t, DefaultCatalogKey, cfg.Catalog.CacheKey)
	assert.Equal(t, DefaultCatalogTTL, cfg.CatalogTTL())
	assert.Equal(t, AuthModeEnv, cfg.Auth.Mode)
	assert.Equal(t, DefaultSessionEnvVar, cfg.Auth.TokenEnv)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.False(t, cfg.Database.Redis.Enabled())
	assert.Error(t, cfg.RequireBroker())
}

func TestLoadFromFile_FileValuesAndWorkers(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://backend.example.com/
  timeout: 5000
camunda:
  broker_address: localhost:26500
  timeout: 45000
database:
  redis:
    address: localhost:6379
workers:
  verify-manual:
    enabled: true
    timeout: 90000
  check-image:
    enabled: false
`)

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "https://backend.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.NoError(t, cfg.RequireBroker())
	assert.True(t, cfg.Database.Redis.Enabled())

	vm := GetWorkerConfig(cfg, "verify-manual")
	assert.Equal(t, 90*time.Second, vm.TimeoutDuration(time.Second))
	assert.Equal(t, 10, vm.MaxJobsActive)

	assert.False(t, IsWorkerEnabled(cfg, "check-image"))
	assert.True(t, IsWorkerEnabled(cfg, "check-health"))
	assert.Equal(t, time.Second, GetWorkerConfig(cfg, "check-health").TimeoutDuration(time.Second))
	assert.Equal(t, 45000, cfg.Camunda.Timeout)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://override:9000")
	t.Setenv("CATALOG_CACHE_TTL", "1000")
	path := writeConfig(t, "api:\n  base_url: http://file:8000\n")

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", cfg.API.BaseURL)
	assert.Equal(t, time.Second, cfg.CatalogTTL())
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_INTROSPECTION_HOST", "idp.example.com")
	path := writeConfig(t, `
auth:
  mode: introspection
  introspection_url: https://${TEST_INTROSPECTION_HOST}/introspect
`)

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/introspect", cfg.Auth.IntrospectionURL)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"relative base url", "api:\n  base_url: /backend\n"},
		{"non http scheme", "api:\n  base_url: ftp://backend\n"},
		{"unknown auth mode", "auth:\n  mode: magic\n"},
		{"introspection without url", "auth:\n  mode: introspection\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
