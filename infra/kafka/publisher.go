// Package kafka publishes match events to Kafka with segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"

	"github.com/kilianp07/loadshare/core/events"
	"github.com/kilianp07/loadshare/core/logger"
)

var _ events.Publisher = (*Publisher)(nil)

// Config holds the producer settings.
type Config struct {
	Brokers []string `json:"brokers"`
	// RequiredAcks is -1 (all), 0 (none) or 1 (leader).
	RequiredAcks   int  `json:"required_acks"`
	BatchTimeoutMS int  `json:"batch_timeout_ms"`
	Async          bool `json:"async"`
	AutoCreate     bool `json:"auto_create_topics"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.BatchTimeoutMS == 0 {
		c.BatchTimeoutMS = 10
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.RequiredAcks < -1 || c.RequiredAcks > 1 {
		return fmt.Errorf("required_acks must be -1, 0 or 1")
	}
	for _, b := range c.Brokers {
		if b == "" {
			return fmt.Errorf("empty kafka broker address")
		}
	}
	return nil
}

// Writer defines the subset of segmentio kafka.Writer we need.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher writes one JSON message per event. The topic travels on the
// message so one writer serves every topic.
type Publisher struct {
	writer Writer
	logger logger.Logger
}

// NewPublisher creates a publisher backed by a kafka.Writer.
func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &skafka.Writer{
		Addr:                   skafka.TCP(cfg.Brokers...),
		Balancer:               &skafka.Hash{},
		RequiredAcks:           skafka.RequiredAcks(cfg.RequiredAcks),
		BatchTimeout:           time.Duration(cfg.BatchTimeoutMS) * time.Millisecond,
		Async:                  cfg.Async,
		AllowAutoTopicCreation: cfg.AutoCreate,
	}
	return NewPublisherWithWriter(w, log), nil
}

// NewPublisherWithWriter allows injecting a test writer.
func NewPublisherWithWriter(w Writer, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Publisher{writer: w, logger: log}
}

// Publish marshals payload to JSON. Keyed payloads set the message key.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}
	msg := skafka.Message{Topic: topic, Value: b}
	if k, ok := payload.(events.Keyed); ok {
		msg.Key = []byte(k.Key())
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", topic, err)
	}
	p.logger.Debugf("kafka published %d bytes to %s", len(b), topic)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
