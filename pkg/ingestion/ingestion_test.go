package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chanhyuk05/tayobell/pkg/calls"
	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/store"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationFeed = `<?xml version="1.0" encoding="UTF-8"?>
<ServiceResult>
  <msgBody>
    <itemList>
      <arsId>01234</arsId>
      <stNm>시청앞</stNm>
      <busRouteId>100100022</busRouteId>
      <busRouteAbrv>143</busRouteAbrv>
      <routeType>3</routeType>
      <arrmsg1>4분30초후[3번째 전]</arrmsg1>
    </itemList>
    <itemList>
      <arsId>01234</arsId>
      <stNm>시청앞</stNm>
      <busRouteId>100100022</busRouteId>
      <busRouteAbrv>143</busRouteAbrv>
      <routeType>3</routeType>
      <arrmsg1>2분후[1번째 전]</arrmsg1>
    </itemList>
    <itemList>
      <arsId>01234</arsId>
      <stNm>시청앞</stNm>
      <busRouteId>100100030</busRouteId>
      <rtNm>종로09</rtNm>
      <routeType>2</routeType>
      <arrmsg1>곧 도착</arrmsg1>
    </itemList>
    <itemList>
      <arsId>01234</arsId>
      <stNm>시청앞</stNm>
      <busRouteId>100100040</busRouteId>
      <busRouteAbrv>9401</busRouteAbrv>
      <routeType>6</routeType>
      <arrmsg1>출발대기</arrmsg1>
    </itemList>
    <itemList>
      <arsId>01234</arsId>
      <stNm>시청앞</stNm>
      <busRouteId>100100050</busRouteId>
      <busRouteAbrv>402</busRouteAbrv>
      <routeType>3</routeType>
      <arrmsg1>운행종료</arrmsg1>
    </itemList>
  </msgBody>
</ServiceResult>`

type fakeFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, stationID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

var captureTime = time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

func newTestService(fetcher *fakeFetcher) (*Service, *store.MemoryStore, *calls.Service) {
	memoryStore := store.NewMemoryStore()
	testClock := clock.NewMockClock(captureTime)
	callService := calls.NewService(memoryStore, testClock)

	return &Service{
		Fetcher:   fetcher,
		Snapshots: memoryStore,
		Calls:     callService,
		Clock:     testClock,
	}, memoryStore, callService
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	service, memoryStore, _ := newTestService(&fakeFetcher{body: stationFeed})

	station := service.Refresh(ctx, "111")

	assert.Equal(t, "시청앞", station.Name)
	require.Len(t, station.Buses, 2)

	assert.Equal(t, "종로09", station.Buses[0].Name)
	assert.Equal(t, 0, station.Buses[0].ArrivalTime)
	assert.Equal(t, transit.RouteTypeVillage, station.Buses[0].RouteType)
	assert.Equal(t, "01234-100100030", station.Buses[0].ID)

	assert.Equal(t, "143", station.Buses[1].Name)
	assert.Equal(t, 120, station.Buses[1].ArrivalTime)
	assert.Equal(t, 1, station.Buses[1].RemainingStops)
	assert.Equal(t, transit.RouteTypeStandard, station.Buses[1].RouteType)
	assert.False(t, station.Buses[1].IsCalled)

	snapshot, err := memoryStore.FindSnapshot(ctx, "111", "143")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 120, snapshot.ArrivalTimeSeconds)
	assert.Equal(t, "시청앞", snapshot.StationName)
	assert.True(t, snapshot.CapturedAt.Equal(captureTime))

	missing, err := memoryStore.FindSnapshot(ctx, "111", "9401")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRefreshMarksCalledRoutes(t *testing.T) {
	ctx := context.Background()
	service, _, callService := newTestService(&fakeFetcher{body: stationFeed})

	service.Refresh(ctx, "111")
	created, err := callService.RequestCall(ctx, "111", "143")
	require.NoError(t, err)
	require.True(t, created)

	station := service.Refresh(ctx, "111")
	require.Len(t, station.Buses, 2)
	assert.False(t, station.Buses[0].IsCalled)
	assert.True(t, station.Buses[1].IsCalled)
}

func TestRefreshFetchFailure(t *testing.T) {
	service, _, _ := newTestService(&fakeFetcher{err: errors.New("connection refused")})

	station := service.Refresh(context.Background(), "111")

	assert.Equal(t, "정류장 111", station.Name)
	assert.NotNil(t, station.Buses)
	assert.Empty(t, station.Buses)
}

func TestRefreshFailureKeepsKnownName(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{body: stationFeed}
	service, _, _ := newTestService(fetcher)

	service.Refresh(ctx, "111")

	fetcher.err = errors.New("upstream down")
	station := service.Refresh(ctx, "111")

	assert.Equal(t, "시청앞", station.Name)
	assert.Empty(t, station.Buses)
}

func TestRefreshEmptyFeed(t *testing.T) {
	service, _, _ := newTestService(&fakeFetcher{body: "<ServiceResult><msgBody></msgBody></ServiceResult>"})

	station := service.Refresh(context.Background(), "111")

	assert.Equal(t, "정류장 111", station.Name)
	assert.Empty(t, station.Buses)
}

func TestRefreshUsesNameCache(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fetcher := &fakeFetcher{body: stationFeed}
	service, _, _ := newTestService(fetcher)
	service.Names = NewRedisNameCache(client)

	service.Refresh(ctx, "111")

	name, ok := service.Names.Get(ctx, "111")
	require.True(t, ok)
	assert.Equal(t, "시청앞", name)

	// A fresh service with no snapshots still knows the name through the cache
	other, _, _ := newTestService(&fakeFetcher{err: errors.New("upstream down")})
	other.Names = service.Names

	assert.Equal(t, "시청앞", other.Refresh(ctx, "111").Name)
}

type recordingNotifier struct {
	mu       sync.Mutex
	stations map[string]*transit.Station
}

func (n *recordingNotifier) StationRefreshed(stationID string, station *transit.Station) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stations[stationID] = station
}

func TestTrackerRefreshAll(t *testing.T) {
	fetcher := &fakeFetcher{body: stationFeed}
	service, _, _ := newTestService(fetcher)
	notifier := &recordingNotifier{stations: map[string]*transit.Station{}}

	tracker := &Tracker{
		Service:     service,
		Stations:    []string{"111", "222", "333"},
		RefreshRate: time.Minute,
		Concurrency: 2,
		Notifier:    notifier,
	}

	tracker.RefreshAll(context.Background())

	assert.Equal(t, 3, fetcher.calls)
	assert.Len(t, notifier.stations, 3)
	assert.Len(t, notifier.stations["222"].Buses, 2)
}

func TestTrackerRunStopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{body: stationFeed}
	service, _, _ := newTestService(fetcher)

	tracker := &Tracker{
		Service:     service,
		Stations:    []string{"111"},
		RefreshRate: time.Hour,
		Concurrency: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return fetcher.calls == 1
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker did not stop after cancel")
	}
}
