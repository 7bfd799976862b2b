// Package store persists arrival snapshots and call records behind a keyed
// interface. Every backend treats deleting a missing key as success and
// refuses a second call record for the same key.
package store

import (
	"context"
	"time"

	"github.com/chanhyuk05/tayobell/pkg/transit"
)

type SnapshotStore interface {
	// UpsertSnapshot drops a snapshot captured before the stored one, so
	// CapturedAt never goes backwards for a key.
	UpsertSnapshot(ctx context.Context, snapshot transit.ArrivalSnapshot) error
	// FindSnapshot returns nil when no snapshot exists for the key.
	FindSnapshot(ctx context.Context, stationID string, routeNo string) (*transit.ArrivalSnapshot, error)
	ListSnapshots(ctx context.Context, stationID string) ([]transit.ArrivalSnapshot, error)
}

type CallRecordStore interface {
	// CreateCall reports false without error if a record already exists.
	CreateCall(ctx context.Context, record transit.CallRecord) (bool, error)
	DeleteCall(ctx context.Context, stationID string, routeNo string) error
	FindCall(ctx context.Context, stationID string, routeNo string) (*transit.CallRecord, error)
	ListCalls(ctx context.Context, stationID string) ([]transit.CallRecord, error)
}

type Store interface {
	SnapshotStore
	CallRecordStore
}

// nextCapturedAt decides the CapturedAt to store for snapshot given the one
// already stored. ok is false when the snapshot is stale and must be dropped.
// A snapshot captured at the same instant is moved one nanosecond past it.
func nextCapturedAt(existing *transit.ArrivalSnapshot, snapshot transit.ArrivalSnapshot) (capturedAt time.Time, ok bool) {
	if existing == nil || snapshot.CapturedAt.After(existing.CapturedAt) {
		return snapshot.CapturedAt, true
	}
	if snapshot.CapturedAt.Before(existing.CapturedAt) {
		return time.Time{}, false
	}

	return existing.CapturedAt.Add(time.Nanosecond), true
}
