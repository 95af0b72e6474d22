package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// EventRepository defines the audit log operations the consumer needs.
type EventRepository interface {
	CreatePositionEvent(rec *models.PositionEventRecord) error
}

// Consumer persists pipeline events into the position_events audit table.
// It only records events; replaying them has no effect on positions.
type Consumer struct {
	reader *kafka.Reader
	repo   EventRepository
	log    zerolog.Logger
}

// NewConsumer creates a new audit consumer for pipeline events.
func NewConsumer(brokers []string, topic, groupID string, repo EventRepository, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		log:    log,
	}
}

// Start consumes messages until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.reader.Config().Topic).Msg("starting audit consumer")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info().Msg("audit consumer shutting down")
				return c.reader.Close()
			}
			c.log.Error().Err(err).Msg("error reading message")
			continue
		}

		if err := c.processMessage(msg); err != nil {
			c.log.Error().Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("error processing message")
			// Keep consuming; a bad event must not stall the audit log.
		}
	}
}

func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.PositionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.EventType == "" {
		return fmt.Errorf("event missing event_type")
	}

	rec := &models.PositionEventRecord{
		EventType: event.EventType,
		Figi:      event.Figi,
		AccountID: event.AccountID,
		UserID:    event.UserID,
		Payload:   msg.Value,
	}
	return c.repo.CreatePositionEvent(rec)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
