// Package factory provides a small generic registry used to instantiate
// pluggable backends (stores, caches, publishers, metrics sinks) from
// configuration. A module is a type string and a map of raw settings.
// Factories decode the settings into typed structs and return the concrete
// implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[cache.Backend]()
//	reg.Register("memory", func(conf map[string]any) (cache.Backend, error) {
//	    var c struct{ Size int `json:"size"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return memcache.New(c.Size), nil
//	})
//	b, err := reg.Create(factory.ModuleConfig{Type: "memory", Conf: map[string]any{"size": 1024}})
package factory
