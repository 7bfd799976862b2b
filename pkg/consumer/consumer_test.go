package consumer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adjust/rmq/v5"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnection(t *testing.T) rmq.Connection {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	connection, err := rmq.OpenConnectionWithRedisClient("test", client, nil)
	require.NoError(t, err)

	return connection
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(newConnection(t))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}

func TestStatsHandler(t *testing.T) {
	connection := newConnection(t)
	_, err := connection.OpenQueue("call-events")
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	NewStatsHandler(connection).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/call-events/stats", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "call-events")
}
