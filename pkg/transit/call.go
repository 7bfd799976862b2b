package transit

import "time"

// CallRecord exists while a passenger's call for a route at a station is active.
type CallRecord struct {
	StationID string    `json:"stationId"`
	RouteNo   string    `json:"routeNo"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c CallRecord) Key() Key {
	return Key{StationID: c.StationID, RouteNo: c.RouteNo}
}
