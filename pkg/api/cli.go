package api

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chanhyuk05/tayobell/pkg/app"
	"github.com/chanhyuk05/tayobell/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the station web API and realtime channels",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides configuration",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if listen := c.String("listen"); listen != "" {
						cfg.Listen = listen
					}

					a, err := app.New(cfg)
					if err != nil {
						return err
					}
					defer a.Close()

					ctx, cancel := context.WithCancel(context.Background())
					defer cancel()

					go a.Tracker.Run(ctx)

					webApp := NewServer(a)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					go func() {
						<-signals
						log.Info().Msg("Shutting down web api")

						cancel()
						a.Hub.Shutdown()
						if err := webApp.Shutdown(); err != nil {
							log.Error().Err(err).Msg("Failed to shut down web server")
						}
					}()

					log.Info().Str("listen", cfg.Listen).Msg("Starting web api")

					return webApp.Listen(cfg.Listen)
				},
			},
		},
	}
}
