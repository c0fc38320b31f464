// Package bigcache adapts allegro's bigcache to the backend contract.
// bigcache shards entries across GC-transparent byte ring buffers; it has no
// per-entry TTL, so the per-call TTL is ignored in favor of the global life
// window.
//
// Argument names: life_window (seconds, required > 0), clean_window
// (seconds), max_entry_size (bytes), hard_max_cache_size (MiB).
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

// ConfigFromArguments maps the flat argument namespace onto a Config.
// When life_window is unset, the region-wide expiration is used.
func ConfigFromArguments(args backend.Arguments) Config {
	var cfg Config
	if d, ok := args.Seconds("life_window"); ok {
		cfg.LifeWindow = d
	} else {
		cfg.LifeWindow = args.Expiration
	}
	if d, ok := args.Seconds("clean_window"); ok {
		cfg.CleanWindow = d
	}
	if n, ok := args.Int("max_entry_size"); ok {
		cfg.MaxEntrySize = n
	}
	if n, ok := args.Int("hard_max_cache_size"); ok {
		cfg.HardMaxCacheSizeMB = n
	}
	return cfg
}

type Backend struct {
	c *bc.BigCache
}

var _ backend.Backend = (*Backend)(nil)

func New(args backend.Arguments) (backend.Backend, error) {
	return NewWithConfig(ConfigFromArguments(args))
}

func NewWithConfig(cfg Config) (*Backend, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache backend: life_window must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := b.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return v, err == nil, err
}

func (b *Backend) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, ok, err := b.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return b.c.Set(key, value)
}

func (b *Backend) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	for k, v := range items {
		if err := b.Set(ctx, k, v, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	err := b.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *Backend) DeleteMulti(ctx context.Context, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := b.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Backend) Close(context.Context) error {
	return b.c.Close()
}
