package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, defaultHost, opts.Host)
	assert.Equal(t, defaultPort, opts.Port)
	assert.Equal(t, StorePostgres, opts.Store)
	assert.Equal(t, 24*time.Hour, opts.JWTTTL)
	assert.Equal(t, 5, opts.RateLimitPerMinute)
	assert.Equal(t, "0.0.0.0:8080", opts.Addr())
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "libraxpert.yaml")
	require.NoError(t, os.WriteFile(file, []byte("port: 9090\nstore: memory\nlog_level: debug\n"), 0o600))
	t.Setenv("LIBRAXPERT_JWT_TTL", "2h")
	t.Setenv("LIBRAXPERT_LOG_LEVEL", "warn")

	opts, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, 9090, opts.Port)
	assert.Equal(t, StoreMemory, opts.Store)
	assert.Equal(t, 2*time.Hour, opts.JWTTTL)
	assert.Equal(t, "warn", opts.LogLevel, "environment overrides the file")
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LIBRAXPERT_OTEL_ENDPOINT=collector:4318\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LIBRAXPERT_OTEL_ENDPOINT") })

	opts, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "collector:4318", opts.OTelEndpoint)
}

func TestValidate(t *testing.T) {
	base := func() Options {
		return Options{Store: StoreMemory, Port: 8080, RateLimitPerMinute: 5, RateLimitBurst: 5}
	}

	o := base()
	assert.NoError(t, o.Validate())

	o = base()
	o.Store = "sqlite"
	assert.Error(t, o.Validate())

	o = base()
	o.Store = StorePostgres
	assert.Error(t, o.Validate())

	o = base()
	o.Port = 0
	assert.Error(t, o.Validate())

	o = base()
	o.RateLimitBurst = 0
	assert.Error(t, o.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}
