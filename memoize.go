package oslocache

import (
	"context"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/codec"
)

// Memoizer carries the per-call-site caching policy: whether results are
// cached at all (global kill switch and the group's caching flag) and which
// TTL applies (the expiration group's cache_time, falling back to the
// region default). ShouldCache and ExpirationTime are exported so callers
// can pre-seed or invalidate entries under the same policy the wrapped
// functions use.
type Memoizer struct {
	cfg             *Config
	region          *Region
	group           string
	expirationGroup string
	keyGen          KeyGenerator
	log             Logger
}

// NewMemoizer builds the memoization policy for one configuration group.
// expirationGroup selects the group whose cache_time applies; empty means
// group itself.
func NewMemoizer(cfg *Config, region *Region, group, expirationGroup string) *Memoizer {
	return &Memoizer{
		cfg:             cfg,
		region:          region,
		group:           group,
		expirationGroup: coalesce(expirationGroup, group),
		keyGen:          region.keyGen,
		log:             region.log,
	}
}

// ShouldCache reports whether results may be read from or written to the
// cache: always false when caching is globally disabled, otherwise the
// group's caching flag (default true). The value argument exists for
// result-dependent policies; the config-driven policy ignores it.
func (m *Memoizer) ShouldCache(_ any) bool {
	if !m.cfg.Enabled {
		return false
	}
	return m.cfg.Group(m.group).CachingEnabled()
}

// ExpirationTime returns the expiration group's TTL override, ok=false when
// the region default expiration applies.
func (m *Memoizer) ExpirationTime() (time.Duration, bool) {
	return m.cfg.Group(m.expirationGroup).Expiration()
}

func (m *Memoizer) ttl() time.Duration {
	if d, ok := m.ExpirationTime(); ok {
		return d
	}
	return m.region.expiration
}

// Key derives the cache key a memoized call would use, so entries can be
// seeded or invalidated without re-deriving the scheme by hand:
//
//	_ = region.Delete(ctx, m.Key("users", "LoadUser", id))
func (m *Memoizer) Key(namespace, fn string, args ...any) string {
	return m.keyGen.Generate(namespace, fn, args...)
}

// Memoize wraps a one-argument function so repeated calls with an equal
// argument reuse the stored result. Absence is tracked out of band: a
// cached zero value, nil included, is a legitimate hit.
//
// Read errors from the backend propagate verbatim, as do store errors — no
// retry, no suppression. A payload that no longer decodes is treated as
// corrupt: dropped, logged, recomputed.
func Memoize[A, R any](m *Memoizer, namespace, fn string, cod codec.Codec[R], target func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		return memoized(m, ctx, m.Key(namespace, fn, arg), cod, func(ctx context.Context) (R, error) {
			return target(ctx, arg)
		})
	}
}

// Memoize2 is Memoize for two-argument functions.
func Memoize2[A, B, R any](m *Memoizer, namespace, fn string, cod codec.Codec[R], target func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	return func(ctx context.Context, a A, b B) (R, error) {
		return memoized(m, ctx, m.Key(namespace, fn, a, b), cod, func(ctx context.Context) (R, error) {
			return target(ctx, a, b)
		})
	}
}

func memoized[R any](m *Memoizer, ctx context.Context, key string, cod codec.Codec[R], compute func(context.Context) (R, error)) (R, error) {
	var zero R
	if !m.ShouldCache(nil) {
		return compute(ctx)
	}

	raw, ok, err := m.region.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		v, derr := cod.Decode(raw)
		if derr == nil {
			return v, nil
		}
		// corrupt or foreign payload; self-heal and recompute
		m.log.Warn("cached payload failed to decode; dropping entry", Fields{"key": key, "err": derr})
		_ = m.region.Delete(ctx, key)
	}

	v, err := compute(ctx)
	if err != nil {
		return zero, err
	}
	if m.ShouldCache(v) {
		raw, err := cod.Encode(v)
		if err != nil {
			return zero, err
		}
		if err := m.region.SetWithTTL(ctx, key, raw, m.ttl()); err != nil {
			return zero, err
		}
	}
	return v, nil
}
