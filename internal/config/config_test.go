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

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 200, cfg.Optimization.MaxIterations)
	assert.Equal(t, "coordinate_descent", cfg.Optimization.Method)
	assert.Equal(t, 5*time.Second, cfg.Optimization.Timeout)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.CostRegistry.TTL)
	assert.Empty(t, cfg.CostRegistry.URL)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
optimization:
  max_iterations: 600
  method: nelder_mead
cost_registry:
  url: http://costs.internal
  preload: [eu-south, us-west]
cache:
  backend: none
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 600, cfg.Optimization.MaxIterations)
	assert.Equal(t, "nelder_mead", cfg.Optimization.Method)
	assert.Equal(t, "http://costs.internal", cfg.CostRegistry.URL)
	assert.Equal(t, []string{"eu-south", "us-west"}, cfg.CostRegistry.Preload)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	t.Setenv("IRRIGATION_LOG_LEVEL", "debug")
	t.Setenv("IRRIGATION_OPTIMIZATION_MAX_ITERATIONS", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Optimization.MaxIterations)
}

func TestPortFallbackEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{Server: ServerConfig{Port: 8080}, Cache: CacheConfig{Backend: CacheMemory}}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Server.Port = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Cache.Backend = "memcached"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Optimization.MaxIterations = -1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Cache.Backend = CacheRedis
	assert.Error(t, bad.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
