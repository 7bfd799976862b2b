package transit

type RouteType string

const (
	RouteTypeVillage  RouteType = "마을버스"
	RouteTypeStandard RouteType = "일반버스"
	RouteTypeWideArea RouteType = "광역버스"
	RouteTypeExpress  RouteType = "급행버스"
)

// RouteTypeFromCode maps the upstream routeType code onto a display category.
// Circular routes fold into standard, and unknown codes default to standard.
func RouteTypeFromCode(code string) RouteType {
	switch code {
	case "1", "2": // airport, village
		return RouteTypeVillage
	case "3", "4", "5": // trunk, branch, circular
		return RouteTypeStandard
	case "6", "7": // wide-area, Incheon
		return RouteTypeWideArea
	default:
		return RouteTypeStandard
	}
}
