// Package memcache adapts a pooled memcached client (bradfitz/gomemcache)
// to the backend contract.
//
// The flat argument names kept for compatibility with older deployments map
// onto the client as follows:
//
//	url             comma-separated server list ("host:port,host:port")
//	socket_timeout  per-operation network timeout, seconds
//	pool_maxsize    maximum idle connections kept per server
//
// dead_retry, pool_unused_timeout and pool_connection_get_timeout are
// accepted but have no client-side equivalent: gomemcache manages failed
// servers and idle connections internally. They are ignored.
package memcache

import (
	"context"
	"errors"
	"strings"
	"time"

	mc "github.com/bradfitz/gomemcache/memcache"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

var ErrNoServers = errors.New("memcache backend: no servers configured")

type Config struct {
	Servers       []string
	SocketTimeout time.Duration // 0 => client default
	PoolMaxSize   int           // 0 => client default
}

// ConfigFromArguments maps the flat argument namespace onto a Config.
func ConfigFromArguments(args backend.Arguments) (Config, error) {
	var cfg Config
	if url, ok := args.String("url"); ok && url != "" {
		for _, s := range strings.Split(url, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Servers = append(cfg.Servers, s)
			}
		}
	}
	if len(cfg.Servers) == 0 {
		return Config{}, ErrNoServers
	}
	if d, ok := args.Seconds("socket_timeout"); ok {
		cfg.SocketTimeout = d
	}
	if n, ok := args.Int("pool_maxsize"); ok {
		cfg.PoolMaxSize = n
	}
	return cfg, nil
}

type Backend struct {
	client *mc.Client
}

var _ backend.Backend = (*Backend)(nil)

// New builds the pooled client. No connection is made until the first
// operation; unreachable servers surface as per-call errors.
func New(args backend.Arguments) (backend.Backend, error) {
	cfg, err := ConfigFromArguments(args)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Backend, error) {
	if len(cfg.Servers) == 0 {
		return nil, ErrNoServers
	}
	client := mc.New(cfg.Servers...)
	if cfg.SocketTimeout > 0 {
		client.Timeout = cfg.SocketTimeout
	}
	if cfg.PoolMaxSize > 0 {
		client.MaxIdleConns = cfg.PoolMaxSize
	}
	return &Backend{client: client}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := b.client.Get(key)
	if errors.Is(err, mc.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (b *Backend) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	items, err := b.client.GetMulti(keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(items))
	for k, item := range items {
		out[k] = item.Value
	}
	return out, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(&mc.Item{Key: key, Value: value, Expiration: expiration(ttl)})
}

func (b *Backend) SetMulti(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	for k, v := range items {
		if err := b.client.Set(&mc.Item{Key: k, Value: v, Expiration: expiration(ttl)}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	err := b.client.Delete(key)
	if errors.Is(err, mc.ErrCacheMiss) {
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
	return b.client.Close()
}

// expiration converts a TTL to the protocol's seconds field; non-positive
// TTLs mean no expiry.
func expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return int32(secs)
}
