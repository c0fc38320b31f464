package oslocache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigYAML(t *testing.T) {
	data := []byte(`
cache:
  backend: memcache_pool
  enabled: true
  expiration_time: 300
  debug_cache_backend: true
  backend_argument:
    - "url:127.0.0.1:11211"
    - "pool_maxsize: 25"
  proxies:
    - metrics
  groups:
    tokens:
      caching: false
    catalog:
      cache_time: 60
`)

	cfg, err := LoadConfig(data, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "memcache_pool", cfg.Backend)
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.DebugCacheBackend)
	assert.Equal(t, 300, cfg.ExpirationTime)
	assert.Equal(t, []string{"url:127.0.0.1:11211", "pool_maxsize: 25"}, cfg.BackendArguments)
	assert.Equal(t, []string{"metrics"}, cfg.Proxies)

	assert.False(t, cfg.Group("tokens").CachingEnabled())
	d, ok := cfg.Group("catalog").Expiration()
	assert.True(t, ok)
	assert.Equal(t, time.Minute, d)
}

func TestLoadConfigJSON(t *testing.T) {
	data := []byte(`{"cache": {"backend": "dict", "enabled": true}}`)

	cfg, err := LoadConfig(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "dict", cfg.Backend)
	assert.True(t, cfg.Enabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte("cache: {}"), FormatYAML)
	require.NoError(t, err)

	// absent keys keep DefaultConfig values
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, BackendNoop, cfg.Backend)
	assert.Equal(t, 600, cfg.ExpirationTime)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.MemcachePoolMaxsize)
}

func TestLoadConfigSectionName(t *testing.T) {
	data := []byte("token_cache:\n  backend: dict\n")

	cfg, err := LoadConfigSection(data, FormatYAML, "token_cache")
	require.NoError(t, err)
	assert.Equal(t, "dict", cfg.Backend)
}

func TestLoadConfigUnsupportedFormat(t *testing.T) {
	_, err := LoadConfig([]byte("cache: {}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestGroupConfigUnsetDefaults(t *testing.T) {
	cfg := DefaultConfig()

	g := cfg.Group("never-mentioned")
	assert.True(t, g.CachingEnabled())
	_, ok := g.Expiration()
	assert.False(t, ok)
}

func TestGroupConfigExplicitZeroCacheTime(t *testing.T) {
	zero := 0
	g := GroupConfig{CacheTime: &zero}

	// explicit zero is an override, distinct from unset
	d, ok := g.Expiration()
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), d)
}
