// Package app wires tayobell's components together from a Config.
package app

import (
	"fmt"

	"github.com/chanhyuk05/tayobell/pkg/arrival"
	"github.com/chanhyuk05/tayobell/pkg/calls"
	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/config"
	"github.com/chanhyuk05/tayobell/pkg/database"
	"github.com/chanhyuk05/tayobell/pkg/events"
	"github.com/chanhyuk05/tayobell/pkg/feed"
	"github.com/chanhyuk05/tayobell/pkg/hub"
	"github.com/chanhyuk05/tayobell/pkg/ingestion"
	"github.com/chanhyuk05/tayobell/pkg/metrics"
	"github.com/chanhyuk05/tayobell/pkg/redis_client"
	"github.com/chanhyuk05/tayobell/pkg/status"
	"github.com/chanhyuk05/tayobell/pkg/store"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config  config.Config
	Clock   clock.Clock
	Store   store.Store
	Metrics *metrics.Metrics

	Calls     *calls.Service
	Ingestion *ingestion.Service
	Status    *status.Checker
	Hub       *hub.Hub
	Tracker   *ingestion.Tracker
}

// New connects the configured backends and builds the application.
func New(cfg config.Config) (*App, error) {
	if cfg.NeedsRedis() {
		if err := redis_client.Connect(cfg.Redis); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	var backend store.Store
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		backend = store.NewRedisStore(redis_client.Client)
	case config.StorageMongo:
		if err := database.Connect(cfg.Mongo); err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		backend = store.NewMongoStore(
			database.GetCollection(database.SnapshotsCollection),
			database.GetCollection(database.CallsCollection),
		)
	default:
		backend = store.NewMemoryStore()
	}

	fetcher := feed.NewClient(
		cfg.Feed.BaseURL,
		cfg.Feed.ServiceKey,
		cfg.Feed.Timeout,
		cfg.Feed.RequestsPerSecond,
		cfg.Feed.MaxRetries,
	)

	a, err := Build(cfg, backend, fetcher, clock.RealClock{})
	if err != nil {
		return nil, err
	}

	if redis_client.Client != nil {
		a.Ingestion.Names = ingestion.NewRedisNameCache(redis_client.Client)
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewRMQPublisher(redis_client.QueueConnection, cfg.Events.Queue)
		if err != nil {
			return nil, err
		}
		a.Calls.Publisher = publisher
	}

	log.Info().
		Str("storage", cfg.Storage.Backend).
		Bool("events", cfg.Events.Enabled).
		Int("watched", len(cfg.Tracker.Stations)).
		Msg("Application configured")

	return a, nil
}

// Build wires the components around an existing store and fetcher.
func Build(cfg config.Config, backend store.Store, fetcher feed.Fetcher, c clock.Clock) (*App, error) {
	evaluator, err := arrival.NewEvaluator(cfg.Condition.TimeRule, cfg.Condition.StopRule)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	callService := calls.NewService(backend, c)
	callService.Metrics = m

	realtimeHub := hub.New(callService, c)
	realtimeHub.Metrics = m

	ingestionService := &ingestion.Service{
		Fetcher:   fetcher,
		Snapshots: backend,
		Calls:     callService,
		Clock:     c,
		Metrics:   m,
	}

	checker := status.NewChecker(backend, callService, evaluator, c)
	checker.Notifier = realtimeHub

	return &App{
		Config:    cfg,
		Clock:     c,
		Store:     backend,
		Metrics:   m,
		Calls:     callService,
		Ingestion: ingestionService,
		Status:    checker,
		Hub:       realtimeHub,
		Tracker: &ingestion.Tracker{
			Service:     ingestionService,
			Stations:    cfg.Tracker.Stations,
			RefreshRate: cfg.Tracker.RefreshRate,
			Concurrency: cfg.Tracker.Concurrency,
			Notifier:    realtimeHub,
		},
	}, nil
}

func (a *App) Close() {
	a.Hub.Shutdown()

	redis_client.Disconnect()
	database.Disconnect()
}
