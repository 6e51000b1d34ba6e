package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

const sampleYAML = `
env: "prod"
api:
  url: "https://api.talentiq.example"
  timeout: "3s"
  user_agent: "talentiq-cli/1"
store:
  backend: "redis"
redis:
  addr: "redis:6379"
  db: 2
  prefix: "tiq:"
`

const brokenYAML = `
api:
  url: [unclosed
`

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "http://localhost:8000", cfg.API.URL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, "talentiq-go", cfg.API.UserAgent)
	require.Equal(t, StoreBolt, cfg.Store.Backend)
	require.Equal(t, "talentiq.db", cfg.Store.Path)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, "talentiq:", cfg.Redis.Prefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("TALENTIQ_API_URL", "http://api:9000")
	t.Setenv("TALENTIQ_STORE", "memory")
	t.Setenv("TALENTIQ_HTTP_TIMEOUT", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://api:9000", cfg.API.URL)
	require.Equal(t, StoreMemory, cfg.Store.Backend)
	require.Equal(t, 250*time.Millisecond, cfg.API.Timeout)
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://api.talentiq.example", cfg.API.URL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "talentiq-cli/1", cfg.API.UserAgent)
	require.Equal(t, StoreRedis, cfg.Store.Backend)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, "tiq:", cfg.Redis.Prefix)
	// unset in the file, filled by defaults
	require.Equal(t, "talentiq.db", cfg.Store.Path)
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
	t.Setenv("TALENTIQ_API_URL", "http://override:1")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "http://override:1", cfg.API.URL)
}

func TestLoad_FromConfigPathEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeFile(t, dir, "config.yaml", sampleYAML))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, dir, "broken.yaml", brokenYAML))
	require.Error(t, err)

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("TALENTIQ_STORE", "sqlite")
	_, err = Load("")
	require.ErrorContains(t, err, "unknown store backend")
}

func TestMustLoad_Panics(t *testing.T) {
	require.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}
