// Package calls records passenger boarding calls. A call exists per
// (station, route) at most once; requesting it again or cancelling a call
// that is already gone both succeed.
package calls

import (
	"context"
	"fmt"

	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/events"
	"github.com/chanhyuk05/tayobell/pkg/metrics"
	"github.com/chanhyuk05/tayobell/pkg/store"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
)

type Service struct {
	Store store.Store
	Clock clock.Clock

	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

func NewService(s store.Store, c clock.Clock) *Service {
	return &Service{
		Store: s,
		Clock: c,
	}
}

// RequestCall returns true when a new call was created and false when one
// already existed for the route.
func (s *Service) RequestCall(ctx context.Context, stationID string, routeNo string) (bool, error) {
	if stationID == "" {
		return false, &ValidationError{Field: "stationId"}
	}
	if routeNo == "" {
		return false, &ValidationError{Field: "routeNo"}
	}

	snapshot, err := s.Store.FindSnapshot(ctx, stationID, routeNo)
	if err != nil {
		return false, fmt.Errorf("finding snapshot: %w", err)
	}
	if snapshot == nil {
		return false, ErrUnknownRoute
	}

	created, err := s.Store.CreateCall(ctx, transit.CallRecord{
		StationID: stationID,
		RouteNo:   routeNo,
		CreatedAt: s.Clock.Now(),
	})
	if err != nil {
		s.Metrics.CallMutation("request", "error")
		return false, fmt.Errorf("creating call: %w", err)
	}

	if created {
		s.Metrics.CallMutation("request", "created")
		s.publish(transit.EventTypeCallRequested, stationID, routeNo)

		log.Info().Str("station", stationID).Str("route", routeNo).Msg("Call requested")
	} else {
		s.Metrics.CallMutation("request", "existing")
	}

	return created, nil
}

// CancelCall removes the call if present. It reports true once no call exists.
func (s *Service) CancelCall(ctx context.Context, stationID string, routeNo string) (bool, error) {
	return s.removeCall(ctx, stationID, routeNo, transit.EventTypeCallCancelled)
}

// EndCall is CancelCall for a call that was served or expired rather than
// withdrawn by the passenger.
func (s *Service) EndCall(ctx context.Context, stationID string, routeNo string) (bool, error) {
	return s.removeCall(ctx, stationID, routeNo, transit.EventTypeCallEnded)
}

func (s *Service) removeCall(ctx context.Context, stationID string, routeNo string, eventType transit.EventType) (bool, error) {
	operation := "cancel"
	if eventType == transit.EventTypeCallEnded {
		operation = "end"
	}

	if err := s.Store.DeleteCall(ctx, stationID, routeNo); err != nil {
		s.Metrics.CallMutation(operation, "error")
		return false, fmt.Errorf("deleting call: %w", err)
	}

	s.Metrics.CallMutation(operation, "removed")
	s.publish(eventType, stationID, routeNo)

	log.Info().Str("station", stationID).Str("route", routeNo).Str("type", string(eventType)).Msg("Call removed")

	return true, nil
}

func (s *Service) HasCall(ctx context.Context, stationID string, routeNo string) (bool, error) {
	record, err := s.Store.FindCall(ctx, stationID, routeNo)
	if err != nil {
		return false, fmt.Errorf("finding call: %w", err)
	}

	return record != nil, nil
}

// ListCalls returns the set of called route numbers at a station.
func (s *Service) ListCalls(ctx context.Context, stationID string) (map[string]bool, error) {
	records, err := s.Store.ListCalls(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("listing calls: %w", err)
	}

	called := map[string]bool{}
	for _, record := range records {
		called[record.RouteNo] = true
	}

	return called, nil
}

func (s *Service) publish(eventType transit.EventType, stationID string, routeNo string) {
	if s.Publisher == nil {
		return
	}

	s.Publisher.Publish(transit.Event{
		Type:      eventType,
		StationID: stationID,
		RouteNo:   routeNo,
		Timestamp: s.Clock.Now().UTC(),
	})
}
