package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestStore(t *testing.T) *RedisStore {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client)
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  newRedisTestStore(t),
	}
}

func TestSnapshotUpsertAndFind(t *testing.T) {
	capturedAt := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			missing, err := s.FindSnapshot(ctx, "111", "143")
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
				StationID: "111", RouteNo: "143", StationName: "시청앞",
				ArrivalTimeSeconds: 120, RemainingStops: 1, CapturedAt: capturedAt,
			}))
			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
				StationID: "111", RouteNo: "143", StationName: "시청앞",
				ArrivalTimeSeconds: 60, RemainingStops: 0, CapturedAt: capturedAt.Add(15 * time.Second),
			}))
			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
				StationID: "111", RouteNo: "402", CapturedAt: capturedAt,
			}))
			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
				StationID: "222", RouteNo: "143", CapturedAt: capturedAt,
			}))

			snapshot, err := s.FindSnapshot(ctx, "111", "143")
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assert.Equal(t, 60, snapshot.ArrivalTimeSeconds)
			assert.Equal(t, 0, snapshot.RemainingStops)
			assert.True(t, snapshot.CapturedAt.Equal(capturedAt.Add(15*time.Second)))

			snapshots, err := s.ListSnapshots(ctx, "111")
			require.NoError(t, err)
			require.Len(t, snapshots, 2)
			assert.Equal(t, "143", snapshots[0].RouteNo)
			assert.Equal(t, "402", snapshots[1].RouteNo)

			none, err := s.ListSnapshots(ctx, "999")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestSnapshotCapturedAtStrictlyIncreases(t *testing.T) {
	capturedAt := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{StationID: "1", RouteNo: "1", ArrivalTimeSeconds: 90, CapturedAt: capturedAt}))
			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{StationID: "1", RouteNo: "1", ArrivalTimeSeconds: 60, CapturedAt: capturedAt}))

			snapshot, err := s.FindSnapshot(ctx, "1", "1")
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assert.True(t, snapshot.CapturedAt.After(capturedAt))
			assert.Equal(t, 60, snapshot.ArrivalTimeSeconds)
		})
	}
}

func TestSnapshotOlderCaptureIsDropped(t *testing.T) {
	capturedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
				StationID: "111", RouteNo: "143", ArrivalTimeSeconds: 30, CapturedAt: capturedAt.Add(10 * time.Second),
			}))
			require.NoError(t, s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
				StationID: "111", RouteNo: "143", ArrivalTimeSeconds: 300, CapturedAt: capturedAt,
			}))

			snapshot, err := s.FindSnapshot(ctx, "111", "143")
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assert.Equal(t, 30, snapshot.ArrivalTimeSeconds)
			assert.True(t, snapshot.CapturedAt.Equal(capturedAt.Add(10*time.Second)))
		})
	}
}

func TestSnapshotConcurrentWritesKeepNewest(t *testing.T) {
	capturedAt := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = s.UpsertSnapshot(ctx, transit.ArrivalSnapshot{
						StationID: "111", RouteNo: "143", ArrivalTimeSeconds: i, CapturedAt: capturedAt.Add(time.Duration(i) * time.Second),
					})
				}(i)
			}
			wg.Wait()

			snapshot, err := s.FindSnapshot(ctx, "111", "143")
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assert.Equal(t, 9, snapshot.ArrivalTimeSeconds)
		})
	}
}

func TestCallCreateIsUniquePerKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := transit.CallRecord{StationID: "111", RouteNo: "143", CreatedAt: time.Now()}

			created, err := s.CreateCall(ctx, record)
			require.NoError(t, err)
			assert.True(t, created)

			created, err = s.CreateCall(ctx, record)
			require.NoError(t, err)
			assert.False(t, created)

			found, err := s.FindCall(ctx, "111", "143")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "143", found.RouteNo)

			records, err := s.ListCalls(ctx, "111")
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestCallCreateConcurrent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			results := make(chan bool, 20)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					created, err := s.CreateCall(ctx, transit.CallRecord{StationID: "111", RouteNo: "143"})
					assert.NoError(t, err)
					results <- created
				}()
			}
			wg.Wait()
			close(results)

			createdCount := 0
			for created := range results {
				if created {
					createdCount++
				}
			}
			assert.Equal(t, 1, createdCount)

			records, err := s.ListCalls(ctx, "111")
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestCallDeleteIsIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.DeleteCall(ctx, "111", "143"))

			_, err := s.CreateCall(ctx, transit.CallRecord{StationID: "111", RouteNo: "143"})
			require.NoError(t, err)

			require.NoError(t, s.DeleteCall(ctx, "111", "143"))
			require.NoError(t, s.DeleteCall(ctx, "111", "143"))

			found, err := s.FindCall(ctx, "111", "143")
			require.NoError(t, err)
			assert.Nil(t, found)
		})
	}
}
