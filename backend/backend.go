// Package backend defines the storage contract every cache backend satisfies.
//
// Backends are thin adapters over a concrete storage engine and own all
// physical I/O, eviction, replication and persistence. The region above
// passes fully mangled keys and opaque byte payloads; implementations must
// store them byte-for-byte and must not reinterpret either.
//
// Concurrency: a backend is shared by every caller of its region. It must be
// safe for concurrent use exactly to the extent its underlying engine is;
// the region adds no locking on top.
package backend

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// KeyMangler transforms a raw cache key into a backend-safe, length-bounded
// form.
type KeyMangler func(key string) string

// Backend is the uniform operation set a region delegates to.
//
// Get reports a miss as ok=false; a stored nil or empty payload is still a
// hit. GetMulti omits missing keys from the returned map. Errors from the
// underlying engine are returned verbatim; the region neither retries nor
// wraps them.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	DeleteMulti(ctx context.Context, keys []string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// KeyManglerProvider is implemented by backends that need their own key
// mangling. The region uses the returned mangler in place of its default
// hashing mangler; returning nil falls back to the default.
type KeyManglerProvider interface {
	KeyMangler() KeyMangler
}

// Arguments carries a backend's constructor inputs: the arguments
// sub-namespace of the resolved configuration plus the region-wide default
// expiration.
//
// Option values originating from backend_argument entries are strings;
// values from typed config fields keep their native type. The accessors
// below convert either form.
type Arguments struct {
	Expiration time.Duration
	Options    map[string]any
}

// Raw returns the option value as configured.
func (a Arguments) Raw(name string) (any, bool) {
	v, ok := a.Options[name]
	return v, ok
}

// String returns the option rendered as a string.
func (a Arguments) String(name string) (string, bool) {
	v, ok := a.Options[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

// Int returns the option as an int, converting numeric strings.
func (a Arguments) Int(name string) (int, bool) {
	v, ok := a.Options[name]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool returns the option as a bool, converting the usual string forms.
func (a Arguments) Bool(name string) (bool, bool) {
	v, ok := a.Options[name]
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// Seconds returns the option interpreted as a duration in seconds.
func (a Arguments) Seconds(name string) (time.Duration, bool) {
	if n, ok := a.Int(name); ok {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
