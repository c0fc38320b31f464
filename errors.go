package oslocache

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by region operations invoked before
// ConfigureRegion completed.
var ErrNotConfigured = errors.New("oslocache: region is not configured")

// ConfigurationError reports a region that cannot be brought into the
// configured state. Fatal to the configure call; the caller must not
// proceed with the region.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oslocache: configuration error: %s: %v", e.Reason, e.Err)
	}
	return "oslocache: configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnknownBackendError reports a symbolic backend name with no registration.
type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("oslocache: unknown backend %q", e.Name)
}

// UnknownProxyError reports a proxy name with no registration.
type UnknownProxyError struct {
	Name string
}

func (e *UnknownProxyError) Error() string {
	return fmt.Sprintf("oslocache: unknown proxy %q", e.Name)
}
