package oslocache

import (
	"context"
	"testing"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/codec"
)

func boolp(b bool) *bool { return &b }
func intp(i int) *int    { return &i }

func memoTestRegion(t *testing.T, cfg *Config) *Region {
	t.Helper()
	region := CreateRegion()
	if _, err := ConfigureRegion(cfg, NewRegistry(), region); err != nil {
		t.Fatalf("ConfigureRegion: %v", err)
	}
	t.Cleanup(func() { region.Close(context.Background()) })
	return region
}

func TestMemoizeCachesResult(t *testing.T) {
	ctx := context.Background()
	cfg := stubConfig(BackendDict)
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "users", "")

	calls := 0
	load := Memoize(m, "users", "LoadName", codec.JSON[string]{}, func(_ context.Context, id int) (string, error) {
		calls++
		return "alice", nil
	})

	for i := 0; i < 3; i++ {
		v, err := load(ctx, 7)
		if err != nil || v != "alice" {
			t.Fatalf("call %d: v=%q err=%v", i, v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("target called %d times, want 1", calls)
	}

	// a different argument is a different key
	if _, err := load(ctx, 8); err != nil {
		t.Fatalf("second arg: %v", err)
	}
	if calls != 2 {
		t.Fatalf("distinct argument should recompute, calls=%d", calls)
	}
}

func TestMemoizeGroupCachingDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := stubConfig(BackendDict)
	cfg.Groups = map[string]GroupConfig{
		"uncached": {Caching: boolp(false)},
	}
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "uncached", "")

	if m.ShouldCache(nil) {
		t.Fatalf("group with caching=false should not cache")
	}

	calls := 0
	f := Memoize(m, "ns", "F", codec.JSON[int]{}, func(context.Context, int) (int, error) {
		calls++
		return calls, nil
	})
	_, _ = f(ctx, 1)
	_, _ = f(ctx, 1)
	if calls != 2 {
		t.Fatalf("disabled group must call through every time, calls=%d", calls)
	}
}

func TestMemoizeGloballyDisabled(t *testing.T) {
	cfg := stubConfig(BackendDict)
	cfg.Enabled = false
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "users", "")

	if m.ShouldCache(nil) {
		t.Fatalf("global kill switch must override the group default")
	}
}

func TestMemoizerExpirationTime(t *testing.T) {
	cfg := stubConfig(BackendDict)
	cfg.Groups = map[string]GroupConfig{
		"fast":  {CacheTime: intp(30)},
		"plain": {},
	}
	region := memoTestRegion(t, cfg)

	m := NewMemoizer(cfg, region, "plain", "fast")
	d, ok := m.ExpirationTime()
	if !ok || d != 30*time.Second {
		t.Fatalf("expiration group override not applied: d=%v ok=%v", d, ok)
	}

	// no override -> region default applies
	m = NewMemoizer(cfg, region, "plain", "")
	if _, ok := m.ExpirationTime(); ok {
		t.Fatalf("unset cache_time should report ok=false")
	}
	if m.ttl() != region.Expiration() {
		t.Fatalf("ttl without override = %v, want region default %v", m.ttl(), region.Expiration())
	}
}

func TestMemoizeNilResultIsAHit(t *testing.T) {
	ctx := context.Background()
	cfg := stubConfig(BackendDict)
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "users", "")

	calls := 0
	load := Memoize(m, "users", "MaybeUser", codec.JSON[*string]{}, func(context.Context, int) (*string, error) {
		calls++
		return nil, nil
	})

	v, err := load(ctx, 1)
	if err != nil || v != nil {
		t.Fatalf("first call: v=%v err=%v", v, err)
	}
	if _, err := load(ctx, 1); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("cached nil result should be a hit, calls=%d", calls)
	}
}

func TestMemoize2ArgumentOrder(t *testing.T) {
	ctx := context.Background()
	cfg := stubConfig(BackendDict)
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "pairs", "")

	calls := 0
	f := Memoize2(m, "pairs", "Join", codec.JSON[string]{}, func(_ context.Context, a, b string) (string, error) {
		calls++
		return a + b, nil
	})

	ab, _ := f(ctx, "a", "b")
	ba, _ := f(ctx, "b", "a")
	if ab == ba {
		t.Fatalf("swapped arguments should not share a cache entry")
	}
	if calls != 2 {
		t.Fatalf("calls=%d, want 2", calls)
	}
}

func TestMemoizeCorruptPayloadRecomputes(t *testing.T) {
	ctx := context.Background()
	cfg := stubConfig(BackendDict)
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "users", "")

	calls := 0
	load := Memoize(m, "users", "Load", codec.JSON[int]{}, func(context.Context, int) (int, error) {
		calls++
		return 42, nil
	})

	// seed garbage under the exact key the memoized call derives
	if err := region.Set(ctx, m.Key("users", "Load", 1), []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	v, err := load(ctx, 1)
	if err != nil || v != 42 {
		t.Fatalf("corrupt entry should recompute: v=%v err=%v", v, err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}

	// the recomputed value replaced the corrupt payload
	if _, err := load(ctx, 1); err != nil {
		t.Fatalf("follow-up call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("recomputed value not re-cached, calls=%d", calls)
	}
}

func TestMemoizeKeyInvalidation(t *testing.T) {
	ctx := context.Background()
	cfg := stubConfig(BackendDict)
	region := memoTestRegion(t, cfg)
	m := NewMemoizer(cfg, region, "users", "")

	calls := 0
	load := Memoize(m, "users", "Load", codec.JSON[int]{}, func(context.Context, int) (int, error) {
		calls++
		return calls, nil
	})

	if v, _ := load(ctx, 1); v != 1 {
		t.Fatalf("first result not 1")
	}
	if err := region.Delete(ctx, m.Key("users", "Load", 1)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if v, _ := load(ctx, 1); v != 2 {
		t.Fatalf("invalidated entry should recompute, got %v", v)
	}
}
