package feed

import "bytes"

const itemElement = "itemList"

// RouteItem is one route's entry in a station's arrival feed.
type RouteItem struct {
	ExternalID     string
	StationName    string
	RouteID        string
	RouteName      string
	RouteTypeCode  string
	ArrivalMessage string
}

// ParseRouteItems turns raw station feed text into route items. Items with no
// route name or no arrival message are dropped.
func ParseRouteItems(raw []byte) []RouteItem {
	items := []RouteItem{}

	for _, record := range ExtractRecords(bytes.NewReader(raw), itemElement) {
		routeName := record["busRouteAbrv"]
		if routeName == "" {
			routeName = record["rtNm"]
		}

		if routeName == "" || record["arrmsg1"] == "" {
			continue
		}

		items = append(items, RouteItem{
			ExternalID:     record["arsId"],
			StationName:    record["stNm"],
			RouteID:        record["busRouteId"],
			RouteName:      routeName,
			RouteTypeCode:  record["routeType"],
			ArrivalMessage: record["arrmsg1"],
		})
	}

	return items
}
