package events

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chanhyuk05/tayobell/pkg/config"
	"github.com/chanhyuk05/tayobell/pkg/consumer"
	"github.com/chanhyuk05/tayobell/pkg/redis_client"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Provides the call event journal",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the call event journal consumer",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "stats-listen",
						Value: ":3333",
						Usage: "address for the queue stats server",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}

					if err := redis_client.Connect(cfg.Redis); err != nil {
						return err
					}
					defer redis_client.Disconnect()

					redisConsumer := consumer.RedisConsumer{
						Connection:      redis_client.QueueConnection,
						QueueName:       cfg.Events.Queue,
						NumberConsumers: 2,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewJournalBatchConsumer(),
					}
					if err := redisConsumer.Setup(); err != nil {
						return err
					}
					go redisConsumer.StartStatsServer(c.String("stats-listen"))

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:      "test-event",
				Usage:     "publish a test call event",
				ArgsUsage: "<stationId> <routeNo>",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}

					if err := redis_client.Connect(cfg.Redis); err != nil {
						return err
					}
					defer redis_client.Disconnect()

					publisher, err := NewRMQPublisher(redis_client.QueueConnection, cfg.Events.Queue)
					if err != nil {
						log.Fatal().Err(err).Msg("Failed to start event queue")
					}

					publisher.Publish(transit.Event{
						Type:      transit.EventTypeCallRequested,
						StationID: c.Args().Get(0),
						RouteNo:   c.Args().Get(1),
						Timestamp: time.Now().UTC(),
					})

					return nil
				},
			},
		},
	}
}
