package transit

import (
	"fmt"
	"time"
)

// ArrivalSnapshot is the most recently ingested arrival estimate for one
// route at one station. ArrivalTimeSeconds is the value at CapturedAt and is
// decayed at read time.
type ArrivalSnapshot struct {
	StationID   string `json:"stationId"`
	RouteNo     string `json:"routeNo"`
	StationName string `json:"stationName"`

	ArrivalTimeSeconds int `json:"arrivalTime"`
	RemainingStops     int `json:"remainingStops"`

	CapturedAt time.Time `json:"capturedAt"`
}

func (s ArrivalSnapshot) Key() Key {
	return Key{StationID: s.StationID, RouteNo: s.RouteNo}
}

// Key identifies a route at a station, the unit for both snapshots and calls.
type Key struct {
	StationID string
	RouteNo   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s-%s", k.StationID, k.RouteNo)
}
