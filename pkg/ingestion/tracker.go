package ingestion

import (
	"context"
	"time"

	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type Notifier interface {
	StationRefreshed(stationID string, station *transit.Station)
}

// Tracker keeps a fixed set of stations refreshed without any client asking.
type Tracker struct {
	Service     *Service
	Stations    []string
	RefreshRate time.Duration
	Concurrency int

	Notifier Notifier
}

func (t *Tracker) Run(ctx context.Context) {
	if len(t.Stations) == 0 {
		log.Info().Msg("No watched stations, tracker not started")
		return
	}

	log.Info().
		Strs("stations", t.Stations).
		Dur("refresh", t.RefreshRate).
		Int("concurrency", t.Concurrency).
		Msg("Starting station tracker")

	for {
		startTime := time.Now()

		t.RefreshAll(ctx)

		executionDuration := time.Since(startTime)
		waitTime := t.RefreshRate - executionDuration
		if waitTime < 0 {
			waitTime = 0
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping station tracker")
			return
		case <-time.After(waitTime):
		}
	}
}

func (t *Tracker) RefreshAll(ctx context.Context) {
	concurrency := t.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	p := pool.New().WithMaxGoroutines(concurrency)
	for _, stationID := range t.Stations {
		stationID := stationID

		p.Go(func() {
			station := t.Service.Refresh(ctx, stationID)

			if t.Notifier != nil {
				t.Notifier.StationRefreshed(stationID, station)
			}
		})
	}
	p.Wait()
}
