package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nicolagi/todoes/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{"TODOES_URL", "TODOES_WIRE_LOG", "TODOESD_ADDR", "TODOESD_PREFIX", "LOG_LEVEL"}

// clearEnv unsets the configuration variables for the duration of the test.
func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
		require.Nil(t, os.Unsetenv(k))
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Nil(t, err)
	assert.Equal(t, &config.Config{
		URL:      "http://localhost:8080/api/",
		Addr:     ":8080",
		Prefix:   "/api",
		LogLevel: logrus.InfoLevel,
	}, cfg)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	f := filepath.Join(t.TempDir(), ".env")
	require.Nil(t, os.WriteFile(f, []byte("TODOES_URL=http://example.com/api/\nLOG_LEVEL=debug\nTODOESD_ADDR=:9090\n"), 0600))
	t.Setenv("TODOESD_ADDR", ":7070")

	cfg, err := config.Load(f)
	require.Nil(t, err)
	assert.Equal(t, "http://example.com/api/", cfg.URL)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestBadLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "chatty")
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NotNil(t, err)
}
