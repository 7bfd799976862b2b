package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTypeFromCode(t *testing.T) {
	tests := []struct {
		code     string
		expected RouteType
	}{
		{"1", RouteTypeVillage},
		{"2", RouteTypeVillage},
		{"3", RouteTypeStandard},
		{"4", RouteTypeStandard},
		{"5", RouteTypeStandard},
		{"6", RouteTypeWideArea},
		{"7", RouteTypeWideArea},
		{"0", RouteTypeStandard},
		{"", RouteTypeStandard},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RouteTypeFromCode(tt.code), "code %q", tt.code)
	}
}
