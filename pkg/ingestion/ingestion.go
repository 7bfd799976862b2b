// Package ingestion turns the upstream arrival feed for a station into the
// Station view and keeps the arrival snapshots current.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/feed"
	"github.com/chanhyuk05/tayobell/pkg/metrics"
	"github.com/chanhyuk05/tayobell/pkg/store"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type CallLister interface {
	ListCalls(ctx context.Context, stationID string) (map[string]bool, error)
}

type Service struct {
	Fetcher   feed.Fetcher
	Snapshots store.SnapshotStore
	Calls     CallLister
	Clock     clock.Clock

	Names   NameCache
	Metrics *metrics.Metrics
}

type routeArrival struct {
	item    feed.RouteItem
	arrival feed.Arrival
}

// Refresh never fails. Upstream and storage problems are logged and the
// caller gets whatever could be built, at worst a named station with no buses.
func (s *Service) Refresh(ctx context.Context, stationID string) *transit.Station {
	raw, err := s.Fetcher.Fetch(ctx, stationID)
	if err != nil {
		log.Warn().Err(err).Str("station", stationID).Msg("Failed to fetch station arrivals")
		s.Metrics.Refreshed(metrics.RefreshError)

		return transit.EmptyStation(s.bestKnownName(ctx, stationID))
	}

	items := feed.ParseRouteItems(raw)

	stationName := ""
	fastest := map[string]routeArrival{}
	for _, item := range items {
		if item.StationName != "" {
			stationName = item.StationName
		}

		arrival, err := feed.ParseArrivalMessage(item.ArrivalMessage)
		if errors.Is(err, feed.ErrAwaitingDeparture) {
			log.Debug().Str("station", stationID).Str("route", item.RouteName).Msg("Skipping route awaiting departure")
			continue
		} else if err != nil {
			log.Debug().Err(err).Str("station", stationID).Str("route", item.RouteName).Msg("Skipping unparsable arrival")
			s.Metrics.ParseSkipped()
			continue
		}

		if existing, exists := fastest[item.RouteName]; !exists || arrival.ArrivalTimeSeconds < existing.arrival.ArrivalTimeSeconds {
			fastest[item.RouteName] = routeArrival{item: item, arrival: arrival}
		}
	}

	if stationName != "" && s.Names != nil {
		s.Names.Set(ctx, stationID, stationName)
	}

	if len(fastest) == 0 {
		s.Metrics.Refreshed(metrics.RefreshEmpty)

		if stationName == "" {
			stationName = s.bestKnownName(ctx, stationID)
		}
		return transit.EmptyStation(stationName)
	}

	if stationName == "" {
		stationName = s.bestKnownName(ctx, stationID)
	}

	called, err := s.Calls.ListCalls(ctx, stationID)
	if err != nil {
		log.Warn().Err(err).Str("station", stationID).Msg("Failed to list calls")
		called = map[string]bool{}
	}

	capturedAt := s.Clock.Now()
	station := transit.EmptyStation(stationName)

	for routeName, fastestArrival := range fastest {
		err := s.Snapshots.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
			StationID:          stationID,
			RouteNo:            routeName,
			StationName:        stationName,
			ArrivalTimeSeconds: fastestArrival.arrival.ArrivalTimeSeconds,
			RemainingStops:     fastestArrival.arrival.RemainingStops,
			CapturedAt:         capturedAt,
		})
		if err != nil {
			log.Warn().Err(err).Str("station", stationID).Str("route", routeName).Msg("Failed to store snapshot")
		}

		station.Buses = append(station.Buses, &transit.Bus{
			ID:             fmt.Sprintf("%s-%s", fastestArrival.item.ExternalID, fastestArrival.item.RouteID),
			Name:           routeName,
			RouteType:      transit.RouteTypeFromCode(fastestArrival.item.RouteTypeCode),
			ArrivalTime:    fastestArrival.arrival.ArrivalTimeSeconds,
			RemainingStops: fastestArrival.arrival.RemainingStops,
			IsCalled:       called[routeName],
			CapturedAt:     capturedAt,
		})
	}

	slices.SortFunc(station.Buses, func(a, b *transit.Bus) int {
		if a.ArrivalTime != b.ArrivalTime {
			return a.ArrivalTime - b.ArrivalTime
		}
		return strings.Compare(a.Name, b.Name)
	})

	s.Metrics.Refreshed(metrics.RefreshOK)
	log.Debug().Str("station", stationID).Int("buses", len(station.Buses)).Msg("Refreshed station")

	return station
}

func (s *Service) bestKnownName(ctx context.Context, stationID string) string {
	if s.Names != nil {
		if name, ok := s.Names.Get(ctx, stationID); ok {
			return name
		}
	}

	snapshots, err := s.Snapshots.ListSnapshots(ctx, stationID)
	if err == nil {
		for _, snapshot := range snapshots {
			if snapshot.StationName != "" {
				return snapshot.StationName
			}
		}
	}

	return transit.DefaultStationName(stationID)
}
