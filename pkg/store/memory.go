package store

import (
	"context"
	"sort"
	"sync"

	"github.com/chanhyuk05/tayobell/pkg/transit"
)

type MemoryStore struct {
	mu sync.RWMutex

	snapshots map[transit.Key]transit.ArrivalSnapshot
	calls     map[transit.Key]transit.CallRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: map[transit.Key]transit.ArrivalSnapshot{},
		calls:     map[transit.Key]transit.CallRecord{},
	}
}

func (m *MemoryStore) UpsertSnapshot(ctx context.Context, snapshot transit.ArrivalSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var existing *transit.ArrivalSnapshot
	if stored, ok := m.snapshots[snapshot.Key()]; ok {
		existing = &stored
	}

	capturedAt, ok := nextCapturedAt(existing, snapshot)
	if !ok {
		return nil
	}
	snapshot.CapturedAt = capturedAt

	m.snapshots[snapshot.Key()] = snapshot
	return nil
}

func (m *MemoryStore) FindSnapshot(ctx context.Context, stationID string, routeNo string) (*transit.ArrivalSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.snapshots[transit.Key{StationID: stationID, RouteNo: routeNo}]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (m *MemoryStore) ListSnapshots(ctx context.Context, stationID string) ([]transit.ArrivalSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := []transit.ArrivalSnapshot{}
	for key, snapshot := range m.snapshots {
		if key.StationID == stationID {
			snapshots = append(snapshots, snapshot)
		}
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].RouteNo < snapshots[j].RouteNo
	})

	return snapshots, nil
}

func (m *MemoryStore) CreateCall(ctx context.Context, record transit.CallRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.calls[record.Key()]; exists {
		return false, nil
	}

	m.calls[record.Key()] = record
	return true, nil
}

func (m *MemoryStore) DeleteCall(ctx context.Context, stationID string, routeNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.calls, transit.Key{StationID: stationID, RouteNo: routeNo})
	return nil
}

func (m *MemoryStore) FindCall(ctx context.Context, stationID string, routeNo string) (*transit.CallRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.calls[transit.Key{StationID: stationID, RouteNo: routeNo}]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *MemoryStore) ListCalls(ctx context.Context, stationID string) ([]transit.CallRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := []transit.CallRecord{}
	for key, record := range m.calls {
		if key.StationID == stationID {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].RouteNo < records[j].RouteNo
	})

	return records, nil
}
