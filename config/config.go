package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/loadshare/core/factory"
	"github.com/kilianp07/loadshare/core/matching"
	"github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/infra/cache"
)

// EnvPrefix marks environment overrides. Nested keys are separated by a
// double underscore, e.g. LS_MATCHING__BUFFER_METERS.
const EnvPrefix = "LS_"

type Config struct {
	Storage  StorageConfig        `json:"storage"`
	Cache    factory.ModuleConfig `json:"cache"`
	Events   EventsConfig         `json:"events"`
	Metrics  metrics.Config       `json:"metrics"`
	Matching matching.Config      `json:"matching"`
	Log      LogConfig            `json:"log"`
}

// Load reads path, applies environment overrides, fills defaults and
// validates every section. An empty path loads defaults and environment
// only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Storage.SetDefaults()
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	c.Events.SetDefaults()
	c.Matching.SetDefaults()
	c.Log.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if !cache.Supports(c.Cache.Type) {
		return fmt.Errorf("cache: unknown type %q (known: %v)", c.Cache.Type, cache.Types())
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}
