package oslocache

import (
	"errors"
	"testing"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

func TestRegistryBuiltins(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{BackendNoop, BackendDict, BackendMemcachePool, BackendMongo} {
		if _, err := reg.Resolve(name); err != nil {
			t.Fatalf("builtin %q not registered: %v", name, err)
		}
	}
}

func TestRegistryUnknownBackend(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve("nope")
	var ube *UnknownBackendError
	if !errors.As(err, &ube) || ube.Name != "nope" {
		t.Fatalf("expected UnknownBackendError for %q, got %v", "nope", err)
	}
}

func TestRegistryReRegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	first := func(backend.Arguments) (backend.Backend, error) { return nil, errors.New("first") }
	second := func(backend.Arguments) (backend.Backend, error) { return nil, errors.New("second") }

	reg.Register("custom", first)
	reg.Register("custom", second) // idempotent, replaces

	f, err := reg.Resolve("custom")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := f(backend.Arguments{}); err == nil || err.Error() != "second" {
		t.Fatalf("re-registration did not replace factory: %v", err)
	}
}

func TestRegistryUnknownProxy(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ResolveProxy("ghost")
	var upe *UnknownProxyError
	if !errors.As(err, &upe) || upe.Name != "ghost" {
		t.Fatalf("expected UnknownProxyError, got %v", err)
	}
}
