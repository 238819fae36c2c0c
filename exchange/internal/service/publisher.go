package service

import (
	"context"
	"encoding/json"

	"github.com/Astemirdum/book-exchange/exchange/internal/model"
	"github.com/Astemirdum/book-exchange/exchange/internal/repository"
	"github.com/Astemirdum/book-exchange/pkg/circuit_breaker"
	"github.com/IBM/sarama"
)

type kafkaPublisher struct {
	producer sarama.SyncProducer
	cb       circuit_breaker.CircuitBreaker
	topic    string
}

// NewKafkaPublisher sends events keyed by request id, so one request's
// history stays on one partition.
func NewKafkaPublisher(producer sarama.SyncProducer, cb circuit_breaker.CircuitBreaker, topic string) Publisher {
	return &kafkaPublisher{
		producer: producer,
		cb:       cb,
		topic:    topic,
	}
}

func (p *kafkaPublisher) Publish(_ context.Context, event model.RequestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RequestID.String()),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}

type storePublisher struct {
	store repository.EventRepository
}

// NewStorePublisher writes events straight to the event store, used when no brokers are configured.
func NewStorePublisher(store repository.EventRepository) Publisher {
	return &storePublisher{store: store}
}

func (p *storePublisher) Publish(ctx context.Context, event model.RequestEvent) error {
	return p.store.SaveEvent(ctx, event)
}
