// Package app wires configuration into a ready matching engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kilianp07/loadshare/config"
	corecache "github.com/kilianp07/loadshare/core/cache"
	"github.com/kilianp07/loadshare/core/events"
	"github.com/kilianp07/loadshare/core/matching"
	coremetrics "github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/core/storage"
	"github.com/kilianp07/loadshare/infra/amqp"
	"github.com/kilianp07/loadshare/infra/cache"
	"github.com/kilianp07/loadshare/infra/kafka"
	"github.com/kilianp07/loadshare/infra/logger"
	"github.com/kilianp07/loadshare/infra/memory"
	_ "github.com/kilianp07/loadshare/infra/metrics"
	"github.com/kilianp07/loadshare/infra/mqtt"
	"github.com/kilianp07/loadshare/infra/postgres"
	"github.com/kilianp07/loadshare/infra/seed"
	"github.com/kilianp07/loadshare/internal/eventbus"
)

// Service owns the engine and every backend built for it.
type Service struct {
	Engine *matching.Engine
	Store  storage.Store
	// Bus is set when events go to the in-process bus.
	Bus *eventbus.Bus

	backend corecache.Backend
	log     *logger.ZerologLogger
}

// New builds the store, cache backend, publisher and metrics sinks
// described by cfg. Anything opened before a failure is closed again.
func New(ctx context.Context, cfg *config.Config) (svc *Service, err error) {
	root := logger.NewZerologLogger("service", cfg.Log.Options())
	svc = &Service{log: root}
	var closers []io.Closer
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i].Close()
			}
		}
	}()

	store, err := newStore(ctx, cfg.Storage, root.With("storage"))
	if err != nil {
		return nil, err
	}
	closers = append(closers, store)
	svc.Store = store

	if cfg.Storage.SeedFile != "" {
		recs, err := seed.LoadFile(cfg.Storage.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed file: %w", err)
		}
		n, err := seed.Apply(ctx, store, recs)
		if err != nil {
			return nil, err
		}
		root.Infof("seeded %d shipments from %s", n, cfg.Storage.SeedFile)
	}

	backend, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache backend: %w", err)
	}
	if c, ok := backend.(io.Closer); ok {
		closers = append(closers, c)
	}
	svc.backend = backend

	pub, bus, err := newPublisher(cfg.Events, root.With("events"))
	if err != nil {
		return nil, err
	}
	closers = append(closers, pub)
	svc.Bus = bus

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	engine, err := matching.NewEngine(store, backend, pub, sink, root.With("matching"), cfg.Matching)
	if err != nil {
		return nil, fmt.Errorf("matching engine: %w", err)
	}
	svc.Engine = engine
	return svc, nil
}

func newStore(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage.Store, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		s, err := postgres.Open(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	case config.StorageMemory, "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

func newPublisher(cfg config.EventsConfig, log logger.Logger) (events.Publisher, *eventbus.Bus, error) {
	switch cfg.Type {
	case config.EventsBus, "":
		bus := eventbus.New(cfg.BusBuffer)
		return bus, bus, nil
	case config.EventsKafka:
		p, err := kafka.NewPublisher(cfg.Kafka, log)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka publisher: %w", err)
		}
		return p, nil, nil
	case config.EventsMQTT:
		p, err := mqtt.NewPublisher(cfg.MQTT, log)
		if err != nil {
			return nil, nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		return p, nil, nil
	case config.EventsAMQP:
		p, err := amqp.Dial(cfg.AMQP, log)
		if err != nil {
			return nil, nil, fmt.Errorf("amqp publisher: %w", err)
		}
		return p, nil, nil
	case config.EventsNop:
		return events.NopPublisher{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown events type %q", cfg.Type)
	}
}

// Logger returns the root service logger.
func (s *Service) Logger() *logger.ZerologLogger { return s.log }

// Close shuts the engine down, which closes the publisher, flushes metrics
// and closes the store, then closes the cache backend.
func (s *Service) Close() error {
	var errs []error
	if s.Engine != nil {
		errs = append(errs, s.Engine.Close())
	}
	if c, ok := s.backend.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
