package config

import (
	"fmt"

	"github.com/kilianp07/loadshare/infra/amqp"
	"github.com/kilianp07/loadshare/infra/kafka"
	"github.com/kilianp07/loadshare/infra/mqtt"
	"github.com/kilianp07/loadshare/infra/postgres"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// StorageConfig selects the shipment store.
type StorageConfig struct {
	Type     string          `json:"type"`
	Postgres postgres.Config `json:"postgres"`
	// SeedFile is a YAML shipment list loaded into the memory store at startup.
	SeedFile string `json:"seed_file"`
}

// SetDefaults applies sane defaults.
func (c *StorageConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = StorageMemory
	}
	if c.Type == StoragePostgres {
		c.Postgres.SetDefaults()
	}
}

// Validate checks the selected backend.
func (c StorageConfig) Validate() error {
	switch c.Type {
	case StorageMemory:
		return nil
	case StoragePostgres:
		return c.Postgres.Validate()
	default:
		return fmt.Errorf("unknown storage type %q", c.Type)
	}
}

// Event backends.
const (
	EventsBus   = "bus"
	EventsKafka = "kafka"
	EventsMQTT  = "mqtt"
	EventsAMQP  = "amqp"
	EventsNop   = "nop"
)

// EventsConfig selects the match event publisher. Only the settings of the
// selected backend are defaulted and validated.
type EventsConfig struct {
	Type      string       `json:"type"`
	BusBuffer int          `json:"bus_buffer"`
	Kafka     kafka.Config `json:"kafka"`
	MQTT      mqtt.Config  `json:"mqtt"`
	AMQP      amqp.Config  `json:"amqp"`
}

// SetDefaults applies sane defaults.
func (c *EventsConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = EventsBus
	}
	switch c.Type {
	case EventsBus:
		if c.BusBuffer <= 0 {
			c.BusBuffer = 64
		}
	case EventsKafka:
		c.Kafka.SetDefaults()
	case EventsMQTT:
		c.MQTT.SetDefaults()
	case EventsAMQP:
		c.AMQP.SetDefaults()
	}
}

// Validate checks the selected backend.
func (c EventsConfig) Validate() error {
	switch c.Type {
	case EventsBus, EventsNop:
		return nil
	case EventsKafka:
		return c.Kafka.Validate()
	case EventsMQTT:
		return c.MQTT.Validate()
	case EventsAMQP:
		return c.AMQP.Validate()
	default:
		return fmt.Errorf("unknown events type %q", c.Type)
	}
}
