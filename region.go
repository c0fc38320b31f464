package oslocache

import (
	"context"
	"strings"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

// Region is the live, backend-bound cache handle. It holds the resolved
// backend, the key mangler and the proxy chain, and exposes the uniform
// operation set plus the memoizer hook.
//
// A region moves one way, unconfigured -> configured, and configuring an
// already-configured region is a no-op. The check-and-set on the configured
// flag is not locked: first-time configuration must happen from a single
// startup sequence, not concurrently. Once configured the region is
// read-mostly and exactly as safe for concurrent operations as its backend.
type Region struct {
	keyGen     KeyGenerator
	log        Logger
	mangler    backend.KeyMangler
	manglerSet bool // explicit option wins over backend/default choice

	configured  bool
	backendName string
	base        backend.Backend // resolved backend, owns physical I/O
	chain       backend.Backend // outermost proxy
	expiration  time.Duration
}

type RegionOption func(*Region)

// WithLogger routes region, proxy and memoizer logs.
func WithLogger(l Logger) RegionOption {
	return func(r *Region) {
		if l != nil {
			r.log = l
		}
	}
}

// WithKeyGenerator overrides the argument stringification.
func WithKeyGenerator(g KeyGenerator) RegionOption {
	return func(r *Region) { r.keyGen = g }
}

// WithKeyMangler forces a key mangler, overriding both the backend's
// preference and the SHA1 default. Pass nil to disable mangling entirely.
func WithKeyMangler(m backend.KeyMangler) RegionOption {
	return func(r *Region) {
		r.mangler = m
		r.manglerSet = true
	}
}

// CreateRegion returns an unconfigured region. ConfigureRegion must run
// before any operation or memoized call.
func CreateRegion(opts ...RegionOption) *Region {
	r := &Region{log: NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configured reports whether ConfigureRegion has completed for this region.
func (r *Region) Configured() bool { return r.configured }

// BackendName returns the symbolic name the backend was resolved under.
func (r *Region) BackendName() string { return r.backendName }

// ConfigureRegion translates cfg and binds region to a live backend:
//
//  1. resolve cfg.Backend through reg and construct it from the
//     "<prefix>.arguments.*" sub-namespace plus the default expiration;
//  2. pick the key mangler — the backend's own preference when it declares
//     one, the SHA1 default otherwise;
//  3. stack the debug proxy (when debug_cache_backend) and then every proxy
//     named in cfg.Proxies, in list order, so the last-listed proxy is
//     outermost and sees calls first.
//
// Configuring an already-configured region returns it unchanged. A nil
// region or an unresolvable backend is a ConfigurationError; the caller
// must not proceed with the region.
func ConfigureRegion(cfg *Config, reg *Registry, region *Region) (*Region, error) {
	if region == nil {
		return nil, &ConfigurationError{Reason: "nil region"}
	}
	if cfg == nil {
		return nil, &ConfigurationError{Reason: "nil config"}
	}
	if reg == nil {
		return nil, &ConfigurationError{Reason: "nil registry"}
	}
	if region.configured {
		return region, nil
	}

	prefix := coalesce(cfg.Prefix, DefaultPrefix)
	conf := BuildConfigMap(cfg, region.log)
	if err := region.configureFromMap(reg, conf, prefix); err != nil {
		return nil, err
	}

	if cfg.DebugCacheBackend {
		region.wrap(NewDebugProxy(region.log))
	}
	for _, name := range cfg.Proxies {
		p, err := reg.ResolveProxy(name)
		if err != nil {
			return nil, &ConfigurationError{Reason: "resolving proxy", Err: err}
		}
		region.log.Debug("adding cache proxy to backend", Fields{"proxy": name})
		region.wrap(p)
	}

	region.configured = true
	return region, nil
}

func (r *Region) configureFromMap(reg *Registry, conf map[string]any, prefix string) error {
	name, _ := conf[prefix+".backend"].(string)
	if name == "" {
		return &ConfigurationError{Reason: "no backend configured under " + prefix + ".backend"}
	}
	factory, err := reg.Resolve(name)
	if err != nil {
		return &ConfigurationError{Reason: "resolving backend", Err: err}
	}

	args := backend.Arguments{Options: make(map[string]any)}
	if secs, ok := conf[prefix+".expiration_time"].(int); ok {
		args.Expiration = time.Duration(secs) * time.Second
	}
	argPrefix := prefix + ".arguments."
	for k, v := range conf {
		if strings.HasPrefix(k, argPrefix) {
			args.Options[strings.TrimPrefix(k, argPrefix)] = v
		}
	}

	b, err := factory(args)
	if err != nil {
		return &ConfigurationError{Reason: "constructing backend " + name, Err: err}
	}

	r.backendName = name
	r.base = b
	r.chain = b
	r.expiration = args.Expiration

	// the backend's preferred mangler wins so its key constraints hold;
	// otherwise hash to a fixed-size key
	if !r.manglerSet {
		r.mangler = SHA1KeyMangler
		if mp, ok := b.(backend.KeyManglerProvider); ok {
			if m := mp.KeyMangler(); m != nil {
				r.mangler = m
			}
		}
	}
	return nil
}

func (r *Region) wrap(p ProxyFunc) { r.chain = p(r.chain) }

func (r *Region) mangle(key string) string {
	if r.mangler == nil {
		return key
	}
	return r.mangler(key)
}

// Expiration returns the region-wide default TTL.
func (r *Region) Expiration() time.Duration { return r.expiration }

// Get returns the cached payload for key, ok=false on a miss. Backend
// errors pass through verbatim.
func (r *Region) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !r.configured {
		return nil, false, ErrNotConfigured
	}
	return r.chain.Get(ctx, r.mangle(key))
}

// GetMulti returns the cached payloads keyed by the caller's (unmangled)
// keys; missing keys are omitted.
func (r *Region) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if !r.configured {
		return nil, ErrNotConfigured
	}
	mangled := make([]string, len(keys))
	for i, k := range keys {
		mangled[i] = r.mangle(k)
	}
	got, err := r.chain.GetMulti(ctx, mangled)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(got))
	for i, k := range keys {
		if v, ok := got[mangled[i]]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set stores value under key with the region default expiration.
func (r *Region) Set(ctx context.Context, key string, value []byte) error {
	return r.SetWithTTL(ctx, key, value, r.expiration)
}

// SetWithTTL stores value with an explicit TTL; memoizers use it for
// per-group cache_time overrides and callers may use it to pre-seed.
func (r *Region) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !r.configured {
		return ErrNotConfigured
	}
	return r.chain.Set(ctx, r.mangle(key), value, ttl)
}

// SetMulti stores every entry with the region default expiration.
func (r *Region) SetMulti(ctx context.Context, items map[string][]byte) error {
	return r.SetMultiWithTTL(ctx, items, r.expiration)
}

func (r *Region) SetMultiWithTTL(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if !r.configured {
		return ErrNotConfigured
	}
	mangled := make(map[string][]byte, len(items))
	for k, v := range items {
		mangled[r.mangle(k)] = v
	}
	return r.chain.SetMulti(ctx, mangled, ttl)
}

func (r *Region) Delete(ctx context.Context, key string) error {
	if !r.configured {
		return ErrNotConfigured
	}
	return r.chain.Delete(ctx, r.mangle(key))
}

func (r *Region) DeleteMulti(ctx context.Context, keys []string) error {
	if !r.configured {
		return ErrNotConfigured
	}
	mangled := make([]string, len(keys))
	for i, k := range keys {
		mangled[i] = r.mangle(k)
	}
	return r.chain.DeleteMulti(ctx, mangled)
}

// Close releases the backend. The region owns its backend exclusively.
func (r *Region) Close(ctx context.Context) error {
	if !r.configured {
		return nil
	}
	return r.chain.Close(ctx)
}
