package oslocache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

// ToString converts one call argument into its key representation.
type ToString func(v any) string

// DefaultToString is the stringification used when a KeyGenerator has none
// of its own: strings and byte slices pass through as UTF-8 text, Stringer
// and error use their own rendering, everything else goes through %v.
func DefaultToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// KeyGenerator derives a stable cache key from a namespace, a function's
// qualified name and its call arguments. Equal arguments (by string
// representation) always produce the same key; argument order matters.
type KeyGenerator struct {
	// ToString overrides DefaultToString.
	ToString ToString
}

// Generate builds the raw (unmangled) key:
//
//	<fn>[|<namespace>]|<arg> <arg> ...
func (g KeyGenerator) Generate(namespace, fn string, args ...any) string {
	to := g.ToString
	if to == nil {
		to = DefaultToString
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = to(a)
	}
	base := fn
	if namespace != "" {
		base = fn + "|" + namespace
	}
	return base + "|" + strings.Join(parts, " ")
}

// GenerateKW extends Generate with named arguments, serialized in sorted
// name order so maps with equal contents key identically.
func (g KeyGenerator) GenerateKW(namespace, fn string, args []any, kwargs map[string]any) string {
	key := g.Generate(namespace, fn, args...)
	if len(kwargs) == 0 {
		return key
	}
	to := g.ToString
	if to == nil {
		to = DefaultToString
	}
	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + to(kwargs[name])
	}
	return key + "|" + strings.Join(parts, " ")
}

// SHA1KeyMangler is the default key mangler: a fixed-length hex digest of
// the raw key, so mangled keys stay backend-safe regardless of argument
// size. Non-ASCII runes are escaped to numeric character references first,
// so the hash input is always plain ASCII.
func SHA1KeyMangler(key string) string {
	sum := sha1.Sum([]byte(escapeNonASCII(key)))
	return hex.EncodeToString(sum[:])
}

var _ backend.KeyMangler = SHA1KeyMangler

func escapeNonASCII(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteByte(byte(r))
		} else {
			fmt.Fprintf(&b, "&#%d;", r)
		}
	}
	return b.String()
}
