package hub

import (
	"time"

	"github.com/chanhyuk05/tayobell/pkg/transit"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

const (
	MessageTypeConnection     = "connection"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
	MessageTypeRequestCall    = "requestCall"
	MessageTypeRequestDelete  = "requestDelete"
	MessageTypeCallAccepted   = "callAccepted"
	MessageTypeDeleteAccepted = "deleteAccepted"
	MessageTypeCallEnd        = "callEnd"
	MessageTypeCallEnded      = "callEnded"
	MessageTypeArrivals       = "arrivals"
	MessageTypeError          = "error"

	// Names used by the first generation of BIS terminals
	legacyMessageTypeBusCall       = "busCall"
	legacyMessageTypeBusCallDelete = "busCallDelete"
)

const (
	errorMessageUnknownType   = "알 수 없는 메시지 타입입니다."
	errorMessageInvalidFormat = "잘못된 메시지 형식입니다."
	errorMessageUnknownBus    = "찾을 수 없는 버스 정보입니다."
	errorMessageWrongChannel  = "이 채널에서 허용되지 않는 메시지입니다."
	errorMessageStoreFailure  = "요청을 처리하지 못했습니다."
)

type InboundMessage struct {
	Type      string `json:"type"`
	StationID string `json:"stationId"`
	RouteNo   string `json:"routeNo"`
}

// OutboundMessage covers every server message; unused fields are omitted.
type OutboundMessage struct {
	Type      string           `json:"type"`
	Message   string           `json:"message,omitempty"`
	StationID string           `json:"stationId,omitempty"`
	RouteNo   string           `json:"routeNo,omitempty"`
	Created   *bool            `json:"created,omitempty"`
	Station   *transit.Station `json:"station,omitempty"`
	Timestamp string           `json:"timestamp"`
}

func normaliseMessageType(messageType string) string {
	switch messageType {
	case legacyMessageTypeBusCall:
		return MessageTypeRequestCall
	case legacyMessageTypeBusCallDelete:
		return MessageTypeRequestDelete
	default:
		return messageType
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}
