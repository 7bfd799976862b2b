package main

import (
	"os"
	"time"

	"github.com/chanhyuk05/tayobell/pkg/api"
	"github.com/chanhyuk05/tayobell/pkg/events"
	"github.com/chanhyuk05/tayobell/pkg/ingestion"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TAYOBELL_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TAYOBELL_DEBUG") == "YES" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "tayobell",
		Description: "Bus boarding call server for stop and in-bus displays",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			ingestion.RegisterCLI(),
			events.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
