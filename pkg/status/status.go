// Package status answers whether a call should be shown on the in-bus
// display for a route, and ends calls whose bus has moved past the call
// window.
package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/chanhyuk05/tayobell/pkg/arrival"
	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/store"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
)

type CallStore interface {
	HasCall(ctx context.Context, stationID string, routeNo string) (bool, error)
	EndCall(ctx context.Context, stationID string, routeNo string) (bool, error)
}

type Notifier interface {
	CallEnded(stationID string, routeNo string)
}

type Checker struct {
	Snapshots store.SnapshotStore
	Calls     CallStore
	Evaluator *arrival.Evaluator
	Clock     clock.Clock

	Notifier Notifier

	mu       sync.Mutex
	observed map[transit.Key]bool
}

func NewChecker(snapshots store.SnapshotStore, calls CallStore, evaluator *arrival.Evaluator, c clock.Clock) *Checker {
	return &Checker{
		Snapshots: snapshots,
		Calls:     calls,
		Evaluator: evaluator,
		Clock:     c,
		observed:  map[transit.Key]bool{},
	}
}

func (c *Checker) CheckStatus(ctx context.Context, stationID string, routeNo string) (transit.CallDisplayState, error) {
	snapshot, err := c.Snapshots.FindSnapshot(ctx, stationID, routeNo)
	if err != nil {
		return transit.CallDisplayState{}, fmt.Errorf("finding snapshot: %w", err)
	}
	if snapshot == nil {
		return transit.CallDisplayState{
			HasCall: false,
			Reason:  transit.ReasonNoData,
		}, nil
	}

	currentArrivalTime := arrival.Estimate(*snapshot, c.Clock.Now())
	condition := c.Evaluator.Evaluate(currentArrivalTime, snapshot.RemainingStops)

	state := transit.CallDisplayState{
		CurrentArrivalTimeSeconds: currentArrivalTime,
		RemainingStops:            snapshot.RemainingStops,
		MeetsTimeCondition:        condition.MeetsTime,
		MeetsStopCondition:        condition.MeetsStops,
	}

	if !condition.Callable() {
		state.Reason = transit.ReasonConditionNotMet
		state.Details = &transit.ConditionDetails{
			CurrentArrivalTime: currentArrivalTime,
			RemainingStops:     snapshot.RemainingStops,
			MeetsTimeCondition: condition.MeetsTime,
			MeetsStopCondition: condition.MeetsStops,
		}
		return state, nil
	}

	hasCall, err := c.Calls.HasCall(ctx, stationID, routeNo)
	if err != nil {
		return transit.CallDisplayState{}, fmt.Errorf("checking call: %w", err)
	}

	state.HasCall = hasCall
	state.BusInfo = &transit.BusInfo{
		RouteNo:            routeNo,
		StationName:        snapshot.StationName,
		CurrentArrivalTime: currentArrivalTime,
		RemainingStops:     snapshot.RemainingStops,
	}

	return state, nil
}

// Poll is CheckStatus for a display that polls repeatedly. A call that was
// being shown and whose route has since left the call window is ended and
// announced to the Notifier.
func (c *Checker) Poll(ctx context.Context, stationID string, routeNo string) (transit.CallDisplayState, error) {
	state, err := c.CheckStatus(ctx, stationID, routeNo)
	if err != nil {
		return state, err
	}

	key := transit.Key{StationID: stationID, RouteNo: routeNo}

	c.mu.Lock()
	if c.observed == nil {
		c.observed = map[transit.Key]bool{}
	}
	previouslyShown := c.observed[key]
	if state.HasCall {
		c.observed[key] = true
	} else {
		delete(c.observed, key)
	}
	c.mu.Unlock()

	if previouslyShown && state.Reason == transit.ReasonConditionNotMet {
		if _, err := c.Calls.EndCall(ctx, stationID, routeNo); err != nil {
			log.Error().Err(err).Str("station", stationID).Str("route", routeNo).Msg("Failed to end passed call")
			return state, nil
		}

		log.Info().Str("station", stationID).Str("route", routeNo).Msg("Call window passed, call ended")

		if c.Notifier != nil {
			c.Notifier.CallEnded(stationID, routeNo)
		}
	}

	return state, nil
}
