package oslocache

import (
	"context"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

// ProxyFunc wraps a backend with additional behavior. Proxies form a
// chain of responsibility built once at configure time: each wrapper holds
// the next layer and must call through to it. The region does not verify
// that a proxy forwards; that contract is the proxy author's to honor.
type ProxyFunc func(next backend.Backend) backend.Backend

// NewDebugProxy returns a proxy that logs key, value and result of every
// operation at debug level. ConfigureRegion applies it automatically when
// debug_cache_backend is set.
func NewDebugProxy(log Logger) ProxyFunc {
	return func(next backend.Backend) backend.Backend {
		return &debugProxy{next: next, log: log}
	}
}

type debugProxy struct {
	next backend.Backend
	log  Logger
}

var _ backend.Backend = (*debugProxy)(nil)

func (p *debugProxy) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := p.next.Get(ctx, key)
	p.log.Debug("CACHE_GET", Fields{"key": key, "hit": ok, "value": value, "err": err})
	return value, ok, err
}

func (p *debugProxy) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	values, err := p.next.GetMulti(ctx, keys)
	p.log.Debug("CACHE_GET_MULTI", Fields{"keys": keys, "values": values, "err": err})
	return values, err
}

func (p *debugProxy) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	p.log.Debug("CACHE_SET", Fields{"key": key, "value": value, "ttl": ttl})
	return p.next.Set(ctx, key, value, ttl)
}

func (p *debugProxy) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	p.log.Debug("CACHE_SET_MULTI", Fields{"items": items, "ttl": ttl})
	return p.next.SetMulti(ctx, items, ttl)
}

func (p *debugProxy) Delete(ctx context.Context, key string) error {
	err := p.next.Delete(ctx, key)
	p.log.Debug("CACHE_DELETE", Fields{"key": key, "err": err})
	return err
}

func (p *debugProxy) DeleteMulti(ctx context.Context, keys []string) error {
	p.log.Debug("CACHE_DELETE_MULTI", Fields{"keys": keys})
	return p.next.DeleteMulti(ctx, keys)
}

func (p *debugProxy) Close(ctx context.Context) error {
	return p.next.Close(ctx)
}
