package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(url string, maxRetries int) *Client {
	client := NewClient(url, "test-key", time.Second, 1000, maxRetries)
	client.RetryInterval = time.Millisecond
	return client
}

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("serviceKey"))
		assert.Equal(t, "111000001", r.URL.Query().Get("stId"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(stationFeed))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL, 0).Fetch(context.Background(), "111000001")
	require.NoError(t, err)

	assert.Len(t, ParseRouteItems(body), 2)
}

func TestClientFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<ok/>"))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL, 2).Fetch(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "<ok/>", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).Fetch(context.Background(), "1")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "1", fetchErr.StationID)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientFetchTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL, 0)
	client.HTTPClient.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := client.Fetch(context.Background(), "1")

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClientFetchRetriesWaitForLimiter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<ok/>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	client.Limiter = rate.NewLimiter(rate.Every(50*time.Millisecond), 1)

	started := time.Now()
	body, err := client.Fetch(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "<ok/>", string(body))
	assert.Equal(t, int32(3), calls.Load())
	// The first attempt spends the burst token, each retry waits for a new one
	assert.GreaterOrEqual(t, time.Since(started), 90*time.Millisecond)
}
