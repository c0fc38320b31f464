package oslocache

import (
	"errors"
	"fmt"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// DefaultPrefix is the configuration prefix used when Config.Prefix is
// empty.
const DefaultPrefix = "cache"

// DefaultSection is the top-level key the cache section is read from when
// loading a config document.
const DefaultSection = "cache"

// Format identifies a supported config encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var ErrUnsupportedFormat = errors.New("oslocache: unsupported config format")

// Config is the inbound configuration surface for one cache namespace.
// Zero values fall back to the documented defaults; caching as a whole is
// opt-in via Enabled.
type Config struct {
	// Prefix names the resolved-config namespace ("cache" by default).
	Prefix string `koanf:"config_prefix"`
	// Backend is the symbolic name resolved through the Registry.
	Backend string `koanf:"backend"`
	// ExpirationTime is the region-wide default TTL in seconds.
	ExpirationTime int `koanf:"expiration_time"`
	// BackendArguments holds "name:value" entries expanded into the
	// backend's arguments sub-namespace.
	BackendArguments []string `koanf:"backend_argument"`
	// Proxies lists registered proxy names, applied in order; the
	// last-listed proxy is outermost and sees calls first.
	Proxies []string `koanf:"proxies"`
	// DebugCacheBackend wraps the backend with a proxy that logs every
	// operation at debug level.
	DebugCacheBackend bool `koanf:"debug_cache_backend"`
	// Enabled is the global kill switch consulted by every memoizer.
	Enabled bool `koanf:"enabled"`

	// Memcache-era fields, applied to the arguments sub-namespace with
	// set-if-absent semantics for url (see BuildConfigMap).
	MemcacheServers                  string `koanf:"memcache_servers"`
	MemcacheDeadRetry                int    `koanf:"memcache_dead_retry"`
	MemcacheSocketTimeout            int    `koanf:"memcache_socket_timeout"`
	MemcachePoolMaxsize              int    `koanf:"memcache_pool_maxsize"`
	MemcachePoolUnusedTimeout        int    `koanf:"memcache_pool_unused_timeout"`
	MemcachePoolConnectionGetTimeout int    `koanf:"memcache_pool_connection_get_timeout"`

	// Groups holds per-call-site options, keyed by group name.
	Groups map[string]GroupConfig `koanf:"groups"`
}

// GroupConfig holds the caching options of one configuration group.
// Pointer fields distinguish "unset" from an explicit zero.
type GroupConfig struct {
	// Caching enables memoization for the group; nil means true.
	Caching *bool `koanf:"caching"`
	// CacheTime overrides the region default TTL, in seconds; nil means
	// use the region default.
	CacheTime *int `koanf:"cache_time"`
}

// CachingEnabled reports the group flag with its default of true.
func (g GroupConfig) CachingEnabled() bool {
	return g.Caching == nil || *g.Caching
}

// Expiration returns the group TTL override, ok=false when unset.
func (g GroupConfig) Expiration() (time.Duration, bool) {
	if g.CacheTime == nil {
		return 0, false
	}
	return time.Duration(*g.CacheTime) * time.Second, true
}

// Group returns the named group's options; unknown names yield the
// all-default zero value.
func (c *Config) Group(name string) GroupConfig {
	return c.Groups[name]
}

// DefaultConfig mirrors the historical option defaults: caching disabled
// until explicitly enabled, noop backend, ten-minute expiration, and the
// memcached pool tuning knobs.
func DefaultConfig() *Config {
	return &Config{
		Prefix:                           DefaultPrefix,
		Backend:                          BackendNoop,
		ExpirationTime:                   600,
		MemcacheDeadRetry:                300,
		MemcacheSocketTimeout:            3,
		MemcachePoolMaxsize:              10,
		MemcachePoolUnusedTimeout:        60,
		MemcachePoolConnectionGetTimeout: 10,
	}
}

// LoadConfig reads the cache section out of a raw YAML or JSON document.
// The section lives under the top-level "cache" key (LoadConfigSection
// accepts another name). Keys absent from the document keep their
// DefaultConfig values.
func LoadConfig(data []byte, format Format) (*Config, error) {
	return LoadConfigSection(data, format, DefaultSection)
}

func LoadConfigSection(data []byte, format Format, section string) (*Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = kyaml.Parser()
	case FormatJSON:
		parser = kjson.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("oslocache: parsing config: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal(section, cfg); err != nil {
		return nil, fmt.Errorf("oslocache: unmarshaling config section %q: %w", section, err)
	}
	cfg.Prefix = coalesce(cfg.Prefix, DefaultPrefix)
	return cfg, nil
}
