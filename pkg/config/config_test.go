package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadZonesDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 10, cfg.Zones.BatchSize)
	assert.Equal(t, 40, cfg.Zones.ClassCapacity)
	assert.Equal(t, 10, cfg.Zones.HistoryLimit)
	assert.Equal(t, 10*time.Minute, cfg.Zones.CacheTTL)
	assert.True(t, cfg.Zones.CacheEnabled)
}

func TestLoadZonesOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ZONES_BATCH_SIZE", "4")
	t.Setenv("ZONES_CACHE_TTL", "not-a-duration")
	t.Setenv("ZONES_CLASS_CAPACITY", "-3")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Zones.BatchSize)
	assert.Equal(t, 10*time.Minute, cfg.Zones.CacheTTL)
	assert.Equal(t, 40, cfg.Zones.ClassCapacity)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
