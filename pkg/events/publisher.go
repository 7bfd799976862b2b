package events

import (
	"encoding/json"
	"fmt"

	"github.com/adjust/rmq/v5"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/rs/zerolog/log"
)

// Publisher appends call events to the journal. Publishing never fails the
// caller; a lost journal entry is logged.
type Publisher interface {
	Publish(event transit.Event)
}

type RMQPublisher struct {
	Queue rmq.Queue
}

func NewRMQPublisher(connection rmq.Connection, queueName string) (*RMQPublisher, error) {
	queue, err := connection.OpenQueue(queueName)
	if err != nil {
		return nil, fmt.Errorf("opening event queue %s: %w", queueName, err)
	}

	return &RMQPublisher{Queue: queue}, nil
}

func (p *RMQPublisher) Publish(event transit.Event) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode call event")
		return
	}

	if err := p.Queue.PublishBytes(eventBytes); err != nil {
		log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to publish call event")
	}
}
