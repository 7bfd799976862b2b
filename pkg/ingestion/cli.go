package ingestion

import (
	"errors"

	"github.com/chanhyuk05/tayobell/pkg/calls"
	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/config"
	"github.com/chanhyuk05/tayobell/pkg/feed"
	"github.com/chanhyuk05/tayobell/pkg/store"
	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "ingestion",
		Usage: "Fetch station arrivals from the upstream feed",
		Subcommands: []*cli.Command{
			{
				Name:      "refresh",
				Usage:     "refresh a single station once and print the result",
				ArgsUsage: "<stationId>",
				Action: func(c *cli.Context) error {
					stationID := c.Args().First()
					if stationID == "" {
						return errors.New("stationId argument is required")
					}

					cfg, err := config.Load()
					if err != nil {
						return err
					}

					memoryStore := store.NewMemoryStore()
					service := &Service{
						Fetcher: feed.NewClient(
							cfg.Feed.BaseURL,
							cfg.Feed.ServiceKey,
							cfg.Feed.Timeout,
							cfg.Feed.RequestsPerSecond,
							cfg.Feed.MaxRetries,
						),
						Snapshots: memoryStore,
						Calls:     calls.NewService(memoryStore, clock.RealClock{}),
						Clock:     clock.RealClock{},
					}

					pretty.Println(service.Refresh(c.Context, stationID))

					return nil
				},
			},
		},
	}
}
