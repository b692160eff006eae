package config

import (
	"github.com/kilianp07/loadshare/infra/logger"
)

// LogConfig defines the zerolog output.
type LogConfig struct {
	// Level is a zerolog level name such as "debug" or "warn".
	Level string `json:"level"`
	// Console selects the human readable writer instead of JSON.
	Console bool `json:"console"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LogConfig) Validate() error {
	_, err := logger.ParseLevel(c.Level)
	return err
}

// Options converts the section for logger.NewZerologLogger.
func (c LogConfig) Options() logger.Options {
	return logger.Options{Level: c.Level, Console: c.Console}
}
