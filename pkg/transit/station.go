package transit

import (
	"fmt"
	"time"
)

type Station struct {
	Name  string `json:"name" groups:"basic,detailed"`
	Buses []*Bus `json:"buses" groups:"basic,detailed"`
}

type Bus struct {
	ID             string    `json:"id" groups:"basic,detailed"`
	Name           string    `json:"name" groups:"basic,detailed"`
	RouteType      RouteType `json:"routeType" groups:"basic,detailed"`
	ArrivalTime    int       `json:"arrivalTime" groups:"basic,detailed"`
	RemainingStops int       `json:"remainingStops" groups:"basic,detailed"`
	IsCalled       bool      `json:"isCalled" groups:"basic,detailed"`

	CapturedAt time.Time `json:"capturedAt" groups:"detailed"`
}

// EmptyStation is the well-formed answer for a station with nothing to show.
func EmptyStation(name string) *Station {
	return &Station{
		Name:  name,
		Buses: []*Bus{},
	}
}

func DefaultStationName(stationID string) string {
	return fmt.Sprintf("정류장 %s", stationID)
}
