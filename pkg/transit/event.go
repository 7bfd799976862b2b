package transit

import "time"

type Event struct {
	Type      EventType `json:"type"`
	StationID string    `json:"stationId"`
	RouteNo   string    `json:"routeNo"`
	Timestamp time.Time `json:"timestamp"`
}

type EventType string

const (
	EventTypeCallRequested EventType = "CallRequested"
	EventTypeCallCancelled EventType = "CallCancelled"
	EventTypeCallEnded     EventType = "CallEnded"
)
