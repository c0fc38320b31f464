// Package noop provides a backend that never stores anything. It keeps the
// cache interface uniform while caching is effectively switched off: every
// read is a miss, every write succeeds and is discarded.
package noop

import (
	"context"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

type Backend struct{}

var _ backend.Backend = Backend{}

// New ignores all arguments; the no-op backend has nothing to configure.
func New(_ backend.Arguments) (backend.Backend, error) {
	return Backend{}, nil
}

func (Backend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Backend) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	return make(map[string][]byte, 0), nil
}

func (Backend) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Backend) SetMulti(context.Context, map[string][]byte, time.Duration) error { return nil }

func (Backend) Delete(context.Context, string) error { return nil }

func (Backend) DeleteMulti(context.Context, []string) error { return nil }

func (Backend) Close(context.Context) error { return nil }
