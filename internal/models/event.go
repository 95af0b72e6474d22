package models

import "time"

// PositionEvent is a Kafka event emitted when the aggregation pipeline
// touches persisted state.
type PositionEvent struct {
	EventType string    `json:"event_type"`
	Figi      string    `json:"figi,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	UserID    int       `json:"user_id"`
	Position  *Position `json:"position,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionEventRecord is a persisted copy of a PositionEvent, kept for audit.
type PositionEventRecord struct {
	ID        int       `json:"id"`
	EventType string    `json:"event_type"`
	Figi      string    `json:"figi,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	UserID    int       `json:"user_id"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
