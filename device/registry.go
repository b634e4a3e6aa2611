package device

import (
	"sync"
)

// Factory creates a device from options.
type Factory func(o *Options) (Device, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// wgpu > native > headless (wgpu presents to a window, native is
	// offscreen, headless only records).
	backendPriority = []string{BackendWGPU, BackendNative, BackendHeadless}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get creates a device from the named backend.
// Returns ErrNoBackend if the backend is not registered.
func Get(name string, o *Options) (Device, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, ErrNoBackend
	}
	return factory(o)
}

// Default creates a device from the best available backend based on
// priority. Backends that fail to create a device are skipped.
// Returns ErrNoBackend if no backend produces a device.
func Default(o *Options) (Device, error) {
	registryMu.RLock()
	factories := make([]Factory, 0, len(backends))
	for _, name := range backendPriority {
		if f, ok := backends[name]; ok {
			factories = append(factories, f)
		}
	}
	for name, f := range backends {
		if !inPriority(name) {
			factories = append(factories, f)
		}
	}
	registryMu.RUnlock()

	var lastErr error
	for _, f := range factories {
		dev, err := f(o)
		if err != nil {
			lastErr = err
			continue
		}
		if dev != nil {
			return dev, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackend
}

func inPriority(name string) bool {
	for _, p := range backendPriority {
		if p == name {
			return true
		}
	}
	return false
}
