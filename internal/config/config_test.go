package config

import (
	"testing"

	"quotefill/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "DATABASE_URL", "LAYOUT_FILE", "FILL_CONCURRENCY", "MAX_UPLOAD_BYTES", "APP_ENV"} {
		t.Setenv(key, "")
	}
	t.Setenv("DOWNLOAD_DIR", "/tmp/templates")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 4, cfg.Fill.Concurrency)
	assert.Equal(t, "/tmp/templates", cfg.Paths.DownloadDir)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/quotefill")
	t.Setenv("FILL_CONCURRENCY", "2")
	t.Setenv("LAYOUT_FILE", "layouts/wholesale.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 2, cfg.Fill.Concurrency)
	assert.Equal(t, "layouts/wholesale.yaml", cfg.Paths.LayoutFile)
}

func TestLoadRejectsBadConcurrency(t *testing.T) {
	t.Setenv("FILL_CONCURRENCY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("QUOTEFILL_TEST_INT", "many")
	assert.Equal(t, 7, getEnvIntOrDefault("QUOTEFILL_TEST_INT", 7))
}
