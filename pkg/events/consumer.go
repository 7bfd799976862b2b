package events

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/chanhyuk05/tayobell/pkg/transit"
	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// JournalBatchConsumer writes every journalled call event to the log.
type JournalBatchConsumer struct {
	Handled int
}

func NewJournalBatchConsumer() *JournalBatchConsumer {
	return &JournalBatchConsumer{}
}

func (c *JournalBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		var event transit.Event
		if err := json.Unmarshal([]byte(delivery.Payload()), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode call event")

			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject call event")
			}
			continue
		}

		notificationData := GetNotificationData(&event)
		log.Info().
			Str("type", string(event.Type)).
			Str("station", event.StationID).
			Str("route", event.RouteNo).
			Time("timestamp", event.Timestamp).
			Msg(notificationData.Message)

		if zerolog.GlobalLevel() <= zerolog.DebugLevel {
			pretty.Println(event)
		}

		if err := delivery.Ack(); err != nil {
			log.Error().Err(err).Msg("Failed to ack call event")
			continue
		}

		c.Handled++
	}
}
