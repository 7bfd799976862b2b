package arrival

import (
	"testing"
	"time"

	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	capturedAt := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	snapshot := transit.ArrivalSnapshot{ArrivalTimeSeconds: 100, CapturedAt: capturedAt}

	assert.Equal(t, 100, Estimate(snapshot, capturedAt))
	assert.Equal(t, 60, Estimate(snapshot, capturedAt.Add(40*time.Second)))
	assert.Equal(t, 60, Estimate(snapshot, capturedAt.Add(40*time.Second+999*time.Millisecond)), "elapsed is floored")
	assert.Equal(t, 0, Estimate(snapshot, capturedAt.Add(100*time.Second)))
	assert.Equal(t, 0, Estimate(snapshot, capturedAt.Add(200*time.Second)), "never negative")
}

func TestEstimateNeverGrowsBeforeCapture(t *testing.T) {
	capturedAt := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	snapshot := transit.ArrivalSnapshot{ArrivalTimeSeconds: 30, CapturedAt: capturedAt}

	assert.Equal(t, 30, Estimate(snapshot, capturedAt.Add(-time.Minute)))
}
