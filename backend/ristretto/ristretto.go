// Package ristretto adapts dgraph's ristretto cache to the backend
// contract. Unlike dict this backend is cost-bounded and admission
// controlled, so writes may be silently dropped under pressure; callers
// treat that as an early eviction.
//
// Argument names: num_counters, max_cost, buffer_items.
package ristretto

import (
	"context"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

const (
	defaultNumCounters = 1e6
	defaultMaxCost     = 64 << 20 // 64 MiB of payload bytes
	defaultBufferItems = 64
)

// ConfigFromArguments maps the flat argument namespace onto a Config,
// applying defaults for anything unset.
func ConfigFromArguments(args backend.Arguments) Config {
	cfg := Config{
		NumCounters: defaultNumCounters,
		MaxCost:     defaultMaxCost,
		BufferItems: defaultBufferItems,
	}
	if n, ok := args.Int("num_counters"); ok && n > 0 {
		cfg.NumCounters = int64(n)
	}
	if n, ok := args.Int("max_cost"); ok && n > 0 {
		cfg.MaxCost = int64(n)
	}
	if n, ok := args.Int("buffer_items"); ok && n > 0 {
		cfg.BufferItems = int64(n)
	}
	return cfg
}

type Backend struct {
	c *rc.Cache
}

var _ backend.Backend = (*Backend)(nil)

func New(args backend.Arguments) (backend.Backend, error) {
	return NewWithConfig(ConfigFromArguments(args))
}

func NewWithConfig(cfg Config) (*Backend, error) {
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	payload, _ := v.([]byte)
	if payload == nil {
		// drop unexpected entry shape
		b.c.Del(key)
		return nil, false, nil
	}
	return payload, true, nil
}

func (b *Backend) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok, _ := b.Get(ctx, k); ok {
			out[k] = v
		}
	}
	return out, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	cost := int64(len(value))
	if cost == 0 {
		cost = 1
	}
	if ttl <= 0 {
		b.c.Set(key, value, cost)
	} else {
		b.c.SetWithTTL(key, value, cost, ttl)
	}
	return nil
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
	b.c.Del(key)
	return nil
}

func (b *Backend) DeleteMulti(ctx context.Context, keys []string) error {
	for _, k := range keys {
		b.c.Del(k)
	}
	return nil
}

func (b *Backend) Close(context.Context) error {
	b.c.Wait()
	b.c.Close()
	return nil
}

// Wait blocks until buffered writes are applied. Mostly useful in tests;
// ristretto applies Set asynchronously.
func (b *Backend) Wait() { b.c.Wait() }

// Metrics exposes ristretto's counters when Config.Metrics was set.
func (b *Backend) Metrics() *rc.Metrics { return b.c.Metrics }
