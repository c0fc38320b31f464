package oslocache

import "strings"

// BuildConfigMap flattens cfg into the resolved configuration dictionary
// consumed by Region.Configure: "<prefix>.backend",
// "<prefix>.expiration_time" and one "<prefix>.arguments.<name>" entry per
// well-formed "name:value" backend argument.
//
// Malformed entries (no colon) are logged and skipped, never fatal; partial
// configuration proceeds, so watch the warnings when a backend argument
// seems to have no effect.
//
// The memcache-era fields are then applied to the arguments sub-namespace
// with set-if-absent semantics, so an explicit backend_argument=url:...
// wins over memcache_servers and likewise for the pool tuning fields.
//
// The result is rebuilt on every call and deterministic for a given cfg.
func BuildConfigMap(cfg *Config, log Logger) map[string]any {
	if log == nil {
		log = NopLogger{}
	}
	prefix := coalesce(cfg.Prefix, DefaultPrefix)

	conf := map[string]any{
		prefix + ".backend":         cfg.Backend,
		prefix + ".expiration_time": cfg.ExpirationTime,
	}

	for _, argument := range cfg.BackendArguments {
		name, value, ok := strings.Cut(argument, ":")
		if !ok {
			log.Warn(`unable to build cache config key, expected format "<argname>:<value>"; skipping`,
				Fields{"argument": argument})
			continue
		}
		conf[prefix+".arguments."+name] = value
	}

	legacy := map[string]any{
		"url":                         cfg.MemcacheServers,
		"dead_retry":                  cfg.MemcacheDeadRetry,
		"socket_timeout":              cfg.MemcacheSocketTimeout,
		"pool_maxsize":                cfg.MemcachePoolMaxsize,
		"pool_unused_timeout":         cfg.MemcachePoolUnusedTimeout,
		"pool_connection_get_timeout": cfg.MemcachePoolConnectionGetTimeout,
	}
	for name, value := range legacy {
		key := prefix + ".arguments." + name
		if _, ok := conf[key]; !ok {
			conf[key] = value
		}
	}

	log.Debug("cache config resolved", Fields{"prefix": prefix, "backend": cfg.Backend})
	return conf
}
