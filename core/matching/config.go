package matching

import (
	"fmt"
	"time"

	"github.com/kilianp07/loadshare/core/cache"
	"github.com/kilianp07/loadshare/core/compat"
	"github.com/kilianp07/loadshare/core/corridor"
)

// Config defines matching-related settings.
type Config struct {
	// BufferMeters is the corridor half-width.
	BufferMeters float64 `json:"buffer_meters"`
	// CacheTTLSeconds bounds how long a match result is served from cache.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	// CapacityKg is the truck payload ceiling used by the weight rule.
	CapacityKg float64 `json:"capacity_kg"`
	// MinBracketScore is the lowest accepted revenue-bracket affinity.
	MinBracketScore int `json:"min_bracket_score"`
}

// SetDefaults applies the policy constants to unset fields.
func (c *Config) SetDefaults() {
	if c.BufferMeters == 0 {
		c.BufferMeters = corridor.DefaultBufferMeters
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = int(cache.DefaultTTL / time.Second)
	}
	if c.CapacityKg == 0 {
		c.CapacityKg = compat.VehicleCapacityKg
	}
	if c.MinBracketScore == 0 {
		c.MinBracketScore = compat.MinBracketScore
	}
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	if c.BufferMeters < 0 {
		return fmt.Errorf("buffer_meters must be positive")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must be positive")
	}
	if c.CapacityKg < 0 {
		return fmt.Errorf("capacity_kg must be positive")
	}
	if c.MinBracketScore < 0 || c.MinBracketScore > 5 {
		return fmt.Errorf("min_bracket_score must be between 0 and 5 (0 uses the default)")
	}
	return nil
}

// CacheTTL returns the cache lifetime as a duration.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return cache.DefaultTTL
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
