package database

import (
	"fmt"
	"time"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// CreatePositionEvent appends an event row to the audit log.
func (db *DB) CreatePositionEvent(rec *models.PositionEventRecord) error {
	query := `
		INSERT INTO position_events (event_type, figi, account_id, user_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		rec.EventType, rec.Figi, rec.AccountID, rec.UserID, rec.Payload, now,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to create position event: %w", err)
	}
	rec.CreatedAt = now
	return nil
}

// GetPositionEventsByFigi returns the audit trail for one instrument, most
// recent first.
func (db *DB) GetPositionEventsByFigi(figi string, limit int) ([]*models.PositionEventRecord, error) {
	query := `
		SELECT id, event_type, figi, account_id, user_id, payload, created_at
		FROM position_events
		WHERE figi = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, figi, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list position events: %w", err)
	}
	defer rows.Close()

	var events []*models.PositionEventRecord
	for rows.Next() {
		var rec models.PositionEventRecord
		err := rows.Scan(&rec.ID, &rec.EventType, &rec.Figi, &rec.AccountID, &rec.UserID, &rec.Payload, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position event: %w", err)
		}
		events = append(events, &rec)
	}
	return events, rows.Err()
}
