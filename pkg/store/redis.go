package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "tayobell"

// RedisStore keeps one hash per station for snapshots and one for calls,
// keyed by route number. HSETNX gives call creation its uniqueness.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		Client: client,
		Prefix: defaultRedisPrefix,
	}
}

func (r *RedisStore) snapshotsKey(stationID string) string {
	return fmt.Sprintf("%s:snapshots:%s", r.Prefix, stationID)
}

func (r *RedisStore) callsKey(stationID string) string {
	return fmt.Sprintf("%s:calls:%s", r.Prefix, stationID)
}

const maxSnapshotWriteAttempts = 10

// UpsertSnapshot compares CapturedAt with the stored snapshot under WATCH and
// retries when another writer changes the station hash in between.
func (r *RedisStore) UpsertSnapshot(ctx context.Context, snapshot transit.ArrivalSnapshot) error {
	key := r.snapshotsKey(snapshot.StationID)

	write := func(tx *redis.Tx) error {
		existing, err := decodeSnapshot(tx.HGet(ctx, key, snapshot.RouteNo).Result())
		if err != nil {
			return err
		}

		capturedAt, ok := nextCapturedAt(existing, snapshot)
		if !ok {
			return nil
		}

		updated := snapshot
		updated.CapturedAt = capturedAt
		snapshotBytes, err := json.Marshal(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, snapshot.RouteNo, snapshotBytes)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSnapshotWriteAttempts; attempt++ {
		err := r.Client.Watch(ctx, write, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("writing snapshot %s-%s: %w", snapshot.StationID, snapshot.RouteNo, err)
		}
		return nil
	}

	return fmt.Errorf("writing snapshot %s-%s: %w", snapshot.StationID, snapshot.RouteNo, redis.TxFailedErr)
}

func (r *RedisStore) FindSnapshot(ctx context.Context, stationID string, routeNo string) (*transit.ArrivalSnapshot, error) {
	snapshot, err := decodeSnapshot(r.Client.HGet(ctx, r.snapshotsKey(stationID), routeNo).Result())
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s-%s: %w", stationID, routeNo, err)
	}
	return snapshot, nil
}

func decodeSnapshot(value string, err error) (*transit.ArrivalSnapshot, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var snapshot transit.ArrivalSnapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *RedisStore) ListSnapshots(ctx context.Context, stationID string) ([]transit.ArrivalSnapshot, error) {
	values, err := r.Client.HGetAll(ctx, r.snapshotsKey(stationID)).Result()
	if err != nil {
		return nil, err
	}

	snapshots := []transit.ArrivalSnapshot{}
	for routeNo, value := range values {
		var snapshot transit.ArrivalSnapshot
		if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
			return nil, fmt.Errorf("decoding snapshot %s-%s: %w", stationID, routeNo, err)
		}
		snapshots = append(snapshots, snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].RouteNo < snapshots[j].RouteNo
	})

	return snapshots, nil
}

func (r *RedisStore) CreateCall(ctx context.Context, record transit.CallRecord) (bool, error) {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return false, err
	}

	return r.Client.HSetNX(ctx, r.callsKey(record.StationID), record.RouteNo, recordBytes).Result()
}

func (r *RedisStore) DeleteCall(ctx context.Context, stationID string, routeNo string) error {
	return r.Client.HDel(ctx, r.callsKey(stationID), routeNo).Err()
}

func (r *RedisStore) FindCall(ctx context.Context, stationID string, routeNo string) (*transit.CallRecord, error) {
	value, err := r.Client.HGet(ctx, r.callsKey(stationID), routeNo).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var record transit.CallRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("decoding call %s-%s: %w", stationID, routeNo, err)
	}
	return &record, nil
}

func (r *RedisStore) ListCalls(ctx context.Context, stationID string) ([]transit.CallRecord, error) {
	values, err := r.Client.HGetAll(ctx, r.callsKey(stationID)).Result()
	if err != nil {
		return nil, err
	}

	records := []transit.CallRecord{}
	for routeNo, value := range values {
		var record transit.CallRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, fmt.Errorf("decoding call %s-%s: %w", stationID, routeNo, err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].RouteNo < records[j].RouteNo
	})

	return records, nil
}
