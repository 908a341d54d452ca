package repository

import (
	"context"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// KafkaEventPublisher writes run.completed events keyed by company.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ repository.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishRunCompleted(ctx context.Context, ev models.RunCompletedEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Company), ev)
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}
