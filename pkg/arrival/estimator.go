// Package arrival turns stored snapshots into live arrival estimates and
// decides whether a bus is close enough for a call to matter.
package arrival

import (
	"time"

	"github.com/chanhyuk05/tayobell/pkg/transit"
)

// Estimate decays the snapshot's arrival time linearly by the whole seconds
// elapsed since capture. It never goes below zero and never grows.
func Estimate(snapshot transit.ArrivalSnapshot, now time.Time) int {
	elapsed := int(now.Sub(snapshot.CapturedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	return max(0, snapshot.ArrivalTimeSeconds-elapsed)
}
