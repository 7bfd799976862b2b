package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMQPublisherPublishesJSON(t *testing.T) {
	connection := rmq.NewTestConnection()

	publisher, err := NewRMQPublisher(connection, "call-events")
	require.NoError(t, err)

	publisher.Publish(transit.Event{
		Type:      transit.EventTypeCallRequested,
		StationID: "111",
		RouteNo:   "143",
		Timestamp: time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC),
	})

	deliveries := connection.GetDeliveries("call-events")
	require.Len(t, deliveries, 1)

	var event transit.Event
	require.NoError(t, json.Unmarshal([]byte(deliveries[0]), &event))
	assert.Equal(t, transit.EventTypeCallRequested, event.Type)
	assert.Equal(t, "111", event.StationID)
	assert.Equal(t, "143", event.RouteNo)
}

func TestJournalBatchConsumer(t *testing.T) {
	valid, err := json.Marshal(transit.Event{
		Type:      transit.EventTypeCallEnded,
		StationID: "111",
		RouteNo:   "143",
	})
	require.NoError(t, err)

	good := rmq.NewTestDeliveryString(string(valid))
	bad := rmq.NewTestDeliveryString("{not json")

	consumer := NewJournalBatchConsumer()
	consumer.Consume(rmq.Deliveries{good, bad})

	assert.Equal(t, rmq.Acked, good.State)
	assert.Equal(t, rmq.Rejected, bad.State)
	assert.Equal(t, 1, consumer.Handled)
}

func TestGetNotificationData(t *testing.T) {
	data := GetNotificationData(&transit.Event{
		Type:      transit.EventTypeCallRequested,
		StationID: "111",
		RouteNo:   "143",
	})

	assert.Equal(t, "Call requested", data.Title)
	assert.Equal(t, "143번 버스 승차 호출 (정류장 111)", data.Message)

	data = GetNotificationData(&transit.Event{Type: transit.EventTypeCallEnded, StationID: "111", RouteNo: "143"})
	assert.Equal(t, "Call ended", data.Title)
}
