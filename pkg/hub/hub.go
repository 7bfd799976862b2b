// Package hub runs the realtime channels for in-bus (BIS) and stop (SIS)
// displays and relays call changes between them.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/chanhyuk05/tayobell/pkg/calls"
	"github.com/chanhyuk05/tayobell/pkg/clock"
	"github.com/chanhyuk05/tayobell/pkg/metrics"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
)

const operationTimeout = 5 * time.Second

type CallService interface {
	RequestCall(ctx context.Context, stationID string, routeNo string) (bool, error)
	CancelCall(ctx context.Context, stationID string, routeNo string) (bool, error)
	EndCall(ctx context.Context, stationID string, routeNo string) (bool, error)
}

type Hub struct {
	Calls   CallService
	Clock   clock.Clock
	Metrics *metrics.Metrics

	mu      sync.Mutex
	clients map[Class]map[*Client]struct{}
}

func New(callService CallService, c clock.Clock) *Hub {
	return &Hub{
		Calls: callService,
		Clock: c,
		clients: map[Class]map[*Client]struct{}{
			ClassBIS: {},
			ClassSIS: {},
		},
	}
}

// Serve runs a connection until it closes. It blocks, so websocket handlers
// can call it directly.
func (h *Hub) Serve(conn Conn, class Class) {
	client := newClient(conn, class)

	writerDone := make(chan struct{})
	go client.writePump(writerDone)

	h.register(client)
	client.trySend(h.encode(OutboundMessage{
		Type:    MessageTypeConnection,
		Message: welcomeMessage(class),
	}))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("class", string(class)).Msg("Realtime client disconnected")
			break
		}

		h.handleMessage(client, data)
	}

	h.unregister(client)
	client.close()
	<-writerDone
	client.closeConnection()
}

func welcomeMessage(class Class) string {
	if class == ClassSIS {
		return "SIS WebSocket에 연결되었습니다."
	}
	return "BIS WebSocket에 연결되었습니다."
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	if h.clients == nil {
		h.clients = map[Class]map[*Client]struct{}{}
	}
	if h.clients[client.Class] == nil {
		h.clients[client.Class] = map[*Client]struct{}{}
	}
	h.clients[client.Class][client] = struct{}{}
	h.mu.Unlock()

	client.open()
	h.Metrics.ConnectionOpened(string(client.Class))

	log.Info().Str("class", string(client.Class)).Msg("Realtime client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, registered := h.clients[client.Class][client]
	delete(h.clients[client.Class], client)
	h.mu.Unlock()

	if registered {
		h.Metrics.ConnectionClosed(string(client.Class))
	}
}

func (h *Hub) ConnectionCount(class Class) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[class])
}

func (h *Hub) handleMessage(client *Client, data []byte) {
	var inbound InboundMessage
	if err := json.Unmarshal(data, &inbound); err != nil {
		h.reply(client, h.errorMessage(errorMessageInvalidFormat))
		return
	}

	messageType := normaliseMessageType(inbound.Type)

	switch {
	case messageType == MessageTypePing:
		h.reply(client, OutboundMessage{Type: MessageTypePong})
	case messageType == MessageTypeRequestCall && client.Class == ClassBIS:
		h.handleRequestCall(client, inbound)
	case messageType == MessageTypeRequestDelete && client.Class == ClassBIS:
		h.handleRequestDelete(client, inbound)
	case messageType == MessageTypeCallEnd && client.Class == ClassSIS:
		h.handleCallEnd(client, inbound)
	case messageType == MessageTypeRequestCall, messageType == MessageTypeRequestDelete, messageType == MessageTypeCallEnd:
		h.reply(client, h.errorMessage(errorMessageWrongChannel))
	default:
		h.reply(client, h.errorMessage(errorMessageUnknownType))
	}
}

func (h *Hub) handleRequestCall(client *Client, inbound InboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	created, err := h.Calls.RequestCall(ctx, inbound.StationID, inbound.RouteNo)

	var validationError *calls.ValidationError
	switch {
	case errors.As(err, &validationError), errors.Is(err, calls.ErrUnknownRoute):
		h.reply(client, h.errorMessage(errorMessageUnknownBus))
		return
	case err != nil:
		log.Error().Err(err).Str("station", inbound.StationID).Str("route", inbound.RouteNo).Msg("Failed to request call")
		h.reply(client, h.errorMessage(errorMessageStoreFailure))
		return
	}

	h.reply(client, OutboundMessage{
		Type:      MessageTypeCallAccepted,
		StationID: inbound.StationID,
		RouteNo:   inbound.RouteNo,
		Created:   &created,
	})
}

func (h *Hub) handleRequestDelete(client *Client, inbound InboundMessage) {
	if inbound.StationID == "" || inbound.RouteNo == "" {
		h.reply(client, h.errorMessage(errorMessageUnknownBus))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if _, err := h.Calls.CancelCall(ctx, inbound.StationID, inbound.RouteNo); err != nil {
		log.Error().Err(err).Str("station", inbound.StationID).Str("route", inbound.RouteNo).Msg("Failed to cancel call")
		h.reply(client, h.errorMessage(errorMessageStoreFailure))
		return
	}

	h.reply(client, OutboundMessage{
		Type:      MessageTypeDeleteAccepted,
		StationID: inbound.StationID,
		RouteNo:   inbound.RouteNo,
	})
}

func (h *Hub) handleCallEnd(client *Client, inbound InboundMessage) {
	if inbound.StationID == "" || inbound.RouteNo == "" {
		h.reply(client, h.errorMessage(errorMessageUnknownBus))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if _, err := h.Calls.EndCall(ctx, inbound.StationID, inbound.RouteNo); err != nil {
		log.Error().Err(err).Str("station", inbound.StationID).Str("route", inbound.RouteNo).Msg("Failed to end call")
		h.reply(client, h.errorMessage(errorMessageStoreFailure))
		return
	}

	h.CallEnded(inbound.StationID, inbound.RouteNo)
}

// CallEnded tells every BIS display that a call is over.
func (h *Hub) CallEnded(stationID string, routeNo string) {
	h.broadcast(ClassBIS, OutboundMessage{
		Type:      MessageTypeCallEnded,
		StationID: stationID,
		RouteNo:   routeNo,
	})
}

// StationRefreshed pushes fresh arrivals for a station to every BIS display.
func (h *Hub) StationRefreshed(stationID string, station *transit.Station) {
	h.broadcast(ClassBIS, OutboundMessage{
		Type:      MessageTypeArrivals,
		StationID: stationID,
		Station:   station,
	})
}

func (h *Hub) broadcast(class Class, message OutboundMessage) {
	encoded := h.encode(message)

	h.mu.Lock()
	recipients := make([]*Client, 0, len(h.clients[class]))
	for client := range h.clients[class] {
		recipients = append(recipients, client)
	}
	h.mu.Unlock()

	for _, client := range recipients {
		if client.trySend(encoded) {
			h.Metrics.BroadcastSent(message.Type)
		} else {
			h.Metrics.BroadcastSkipped(message.Type)
		}
	}
}

func (h *Hub) reply(client *Client, message OutboundMessage) {
	if !client.trySend(h.encode(message)) {
		log.Debug().Str("class", string(client.Class)).Str("type", message.Type).Msg("Dropped reply to realtime client")
	}
}

func (h *Hub) errorMessage(message string) OutboundMessage {
	return OutboundMessage{
		Type:    MessageTypeError,
		Message: message,
	}
}

func (h *Hub) encode(message OutboundMessage) []byte {
	message.Timestamp = formatTimestamp(h.Clock.Now())

	encoded, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to encode realtime message")
		return nil
	}
	return encoded
}

// Shutdown closes every connection. Serve calls return as their reads fail.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := []*Client{}
	for _, classClients := range h.clients {
		for client := range classClients {
			clients = append(clients, client)
		}
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
		client.closeConnection()
	}

	log.Info().Int("connections", len(clients)).Msg("Realtime hub shut down")
}
