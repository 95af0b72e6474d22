package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// Event types published by the aggregation pipeline.
const (
	EventAccountLinked     = "ACCOUNT_LINKED"
	EventPositionRefreshed = "POSITION_REFRESHED"
)

// Producer publishes pipeline events to Kafka.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishAccountLinked publishes an event for a brokerage account seen for
// the first time.
func (p *Producer) PublishAccountLinked(ctx context.Context, userID int, accountID string) error {
	event := models.PositionEvent{
		EventType: EventAccountLinked,
		AccountID: accountID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, accountID, event)
}

// PublishPositionRefreshed publishes an event for a position row inserted or
// overwritten during a portfolio refresh.
func (p *Producer) PublishPositionRefreshed(ctx context.Context, userID int, accountID string, pos *models.Position) error {
	event := models.PositionEvent{
		EventType: EventPositionRefreshed,
		Figi:      pos.Figi,
		AccountID: accountID,
		UserID:    userID,
		Position:  pos,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, pos.Figi, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.PositionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
