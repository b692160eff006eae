// Package cache provides the key/value backends of the match result cache.
package cache

import (
	corecache "github.com/kilianp07/loadshare/core/cache"
	"github.com/kilianp07/loadshare/core/factory"
)

var backendRegistry = factory.NewRegistry[corecache.Backend]()

// init registers built-in cache backends.
func init() {
	_ = Register("memory", func(conf map[string]any) (corecache.Backend, error) {
		var c MemoryConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMemory(c)
	})

	_ = Register("redis", func(conf map[string]any) (corecache.Backend, error) {
		var c RedisConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRedis(c)
	})

	_ = Register("nop", func(map[string]any) (corecache.Backend, error) {
		return corecache.NopBackend{}, nil
	})
}

// Register adds a backend factory identified by name.
func Register(name string, f factory.Factory[corecache.Backend]) error {
	return backendRegistry.Register(name, f)
}

// New creates the backend described by cfg. An empty type yields the nop
// backend.
func New(cfg factory.ModuleConfig) (corecache.Backend, error) {
	if cfg.Type == "" {
		return corecache.NopBackend{}, nil
	}
	return backendRegistry.Create(cfg)
}

// Types lists the registered backend types.
func Types() []string { return backendRegistry.Names() }

// Supports reports whether a backend type is registered.
func Supports(name string) bool { return backendRegistry.Has(name) }
