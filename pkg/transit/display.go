package transit

const (
	ReasonNoData          = "no data"
	ReasonConditionNotMet = "condition not met"
)

// CallDisplayState is computed per status request and never stored.
type CallDisplayState struct {
	HasCall bool   `json:"hasCall"`
	Reason  string `json:"reason,omitempty"`

	CurrentArrivalTimeSeconds int  `json:"currentArrivalTimeSeconds"`
	RemainingStops            int  `json:"remainingStops"`
	MeetsTimeCondition        bool `json:"meetsTimeCondition"`
	MeetsStopCondition        bool `json:"meetsStopCondition"`

	Details *ConditionDetails `json:"details,omitempty"`
	BusInfo *BusInfo          `json:"busInfo,omitempty"`
}

type ConditionDetails struct {
	CurrentArrivalTime int  `json:"currentArrivalTime"`
	RemainingStops     int  `json:"remainingStops"`
	MeetsTimeCondition bool `json:"meetsTimeCondition"`
	MeetsStopCondition bool `json:"meetsStopCondition"`
}

type BusInfo struct {
	RouteNo            string `json:"routeNo"`
	StationName        string `json:"stationName"`
	CurrentArrivalTime int    `json:"currentArrivalTime"`
	RemainingStops     int    `json:"remainingStops"`
}
