package oslocache

import (
	"sync"

	"github.com/SovereignCloudStack/oslo.cache/backend"
	"github.com/SovereignCloudStack/oslo.cache/backend/dict"
	"github.com/SovereignCloudStack/oslo.cache/backend/memcache"
	"github.com/SovereignCloudStack/oslo.cache/backend/mongo"
	"github.com/SovereignCloudStack/oslo.cache/backend/noop"
)

// Built-in backend names pre-registered by NewRegistry.
const (
	BackendNoop         = "noop"
	BackendDict         = "dict"
	BackendMemcachePool = "memcache_pool"
	BackendMongo        = "mongo"
)

// Factory constructs a backend from its resolved arguments.
type Factory func(args backend.Arguments) (backend.Backend, error)

// Registry associates symbolic backend names with factories and proxy names
// with constructors. It is an explicit object passed into configuration, not
// a package-level singleton; create one per process at startup and share it.
//
// Registration is idempotent: re-registering a name replaces the previous
// entry, which keeps hot reload and test isolation simple.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Factory
	proxies  map[string]ProxyFunc
}

// NewRegistry returns a registry with the four built-in backends
// pre-registered: noop, dict, memcache_pool and mongo. Further backends
// (e.g. the redis sentinel backend) register through Register.
func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[string]Factory),
		proxies:  make(map[string]ProxyFunc),
	}
	r.Register(BackendNoop, noop.New)
	r.Register(BackendDict, dict.New)
	r.Register(BackendMemcachePool, memcache.New)
	r.Register(BackendMongo, mongo.New)
	return r
}

func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = factory
}

// Resolve returns the factory for name, or *UnknownBackendError.
func (r *Registry) Resolve(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.backends[name]
	if !ok {
		return nil, &UnknownBackendError{Name: name}
	}
	return f, nil
}

// RegisterProxy associates a name usable in Config.Proxies with a proxy
// constructor.
func (r *Registry) RegisterProxy(name string, p ProxyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxies[name] = p
}

// ResolveProxy returns the proxy constructor for name, or
// *UnknownProxyError.
func (r *Registry) ResolveProxy(name string) (ProxyFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.proxies[name]
	if !ok {
		return nil, &UnknownProxyError{Name: name}
	}
	return p, nil
}
