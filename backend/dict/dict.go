// Package dict provides an in-process dictionary backend. Entries expire
// lazily: an expired entry is dropped the next time it is read. There is no
// background sweeper and no size bound, so this backend suits tests and
// single-process deployments, not shared production caches.
package dict

import (
	"context"
	"sync"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

type entry struct {
	value    []byte
	deadline time.Time // zero => no expiry
}

type Backend struct {
	mu    sync.Mutex
	items map[string]entry
}

var _ backend.Backend = (*Backend)(nil)

// New ignores the arguments sub-namespace; the region-wide expiration is
// applied per Set call by the region.
func New(_ backend.Arguments) (backend.Backend, error) {
	return &Backend{items: make(map[string]entry)}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.get(key)
}

// get drops expired entries on read. Callers hold b.mu.
func (b *Backend) get(key string) ([]byte, bool, error) {
	e, ok := b.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		delete(b.items, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (b *Backend) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok, _ := b.get(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set(key, value, ttl)
	return nil
}

func (b *Backend) set(key string, value []byte, ttl time.Duration) {
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}
	b.items[key] = entry{value: value, deadline: deadline}
}

func (b *Backend) SetMulti(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, v := range items {
		b.set(k, v, ttl)
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, key)
	return nil
}

func (b *Backend) DeleteMulti(_ context.Context, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.items, k)
	}
	return nil
}

func (b *Backend) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = make(map[string]entry)
	return nil
}

// Len reports the number of live entries. Expired-but-unread entries count
// until their next read.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
