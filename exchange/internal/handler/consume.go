package handler

import (
	"encoding/json"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Consumer persists lifecycle events read from the request topic.
type Consumer struct {
	sink  EventSink
	log   *zap.Logger
	ready chan bool
}

func NewConsumer(sink EventSink, log *zap.Logger) *Consumer {
	return &Consumer{
		sink:  sink,
		log:   log.Named("consumer"),
		ready: make(chan bool),
	}
}

// Ready is closed once the first session is set up.
func (consumer *Consumer) Ready() <-chan bool {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event model.RequestEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("unmarshal event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			// a later MarkMessage would commit past this offset; end the session
			// so the group resumes here
			if err := consumer.sink.SaveEvent(session.Context(), event); err != nil {
				consumer.log.Error("consumer.SaveEvent",
					zap.Int64("offset", message.Offset), zap.Error(err))
				return errors.Wrapf(err, "save event at offset %d", message.Offset)
			}

			consumer.log.Debug("event stored",
				zap.String("event", string(event.EventType)),
				zap.Stringer("requestID", event.RequestID),
				zap.Int64("offset", message.Offset))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
