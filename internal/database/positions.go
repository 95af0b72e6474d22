package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// UpsertPositionIfStale inserts a position keyed by figi, or refreshes an
// existing row only when it is older than staleHours (whole hours,
// truncated). A nil staleHours means an existing row is never refreshed.
// This is the stale-read-through policy: fresh rows are returned unchanged.
// The second return value reports whether the row was written.
func (db *DB) UpsertPositionIfStale(figi string, attrs models.PositionAttrs, staleHours *int) (*models.Position, bool, error) {
	existing, err := db.GetPositionByFigi(figi)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, err
	}

	now := time.Now()
	if existing == nil {
		insert := `
			INSERT INTO positions (figi, ticker, quantity, average_price, expected_yield, current_price, currency, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (figi) DO NOTHING
			RETURNING id
		`
		p := &models.Position{
			Figi:          figi,
			Ticker:        attrs.Ticker,
			Quantity:      attrs.Quantity,
			AveragePrice:  attrs.AveragePrice,
			ExpectedYield: attrs.ExpectedYield,
			CurrentPrice:  attrs.CurrentPrice,
			Currency:      attrs.Currency,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err := db.conn.QueryRow(insert,
			figi, attrs.Ticker, attrs.Quantity,
			attrs.AveragePrice, attrs.ExpectedYield, attrs.CurrentPrice,
			attrs.Currency, now,
		).Scan(&p.ID)
		if err == sql.ErrNoRows {
			// Lost the insert race: another refresh created the row between
			// our read and the insert. The first writer's row stands.
			winner, err := db.GetPositionByFigi(figi)
			if err != nil {
				return nil, false, err
			}
			return winner, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert position: %w", err)
		}
		return p, true, nil
	}

	if staleHours == nil || int(now.Sub(existing.UpdatedAt).Hours()) <= *staleHours {
		return existing, false, nil
	}

	update := `
		UPDATE positions
		SET ticker = $2, quantity = $3, average_price = $4,
		    expected_yield = $5, current_price = $6, currency = $7, updated_at = $8
		WHERE figi = $1
	`
	_, err = db.conn.Exec(update,
		figi, attrs.Ticker, attrs.Quantity,
		attrs.AveragePrice, attrs.ExpectedYield, attrs.CurrentPrice,
		attrs.Currency, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to refresh position: %w", err)
	}

	existing.Ticker = attrs.Ticker
	existing.Quantity = attrs.Quantity
	existing.AveragePrice = attrs.AveragePrice
	existing.ExpectedYield = attrs.ExpectedYield
	existing.CurrentPrice = attrs.CurrentPrice
	existing.Currency = attrs.Currency
	existing.UpdatedAt = now
	return existing, true, nil
}

// GetPositionByFigi retrieves a position by its instrument identifier.
// Returns sql.ErrNoRows when no row exists.
func (db *DB) GetPositionByFigi(figi string) (*models.Position, error) {
	query := `
		SELECT id, figi, ticker, quantity, average_price, expected_yield, current_price, currency, created_at, updated_at
		FROM positions
		WHERE figi = $1
	`
	var p models.Position
	err := db.conn.QueryRow(query, figi).Scan(
		&p.ID, &p.Figi, &p.Ticker, &p.Quantity,
		&p.AveragePrice, &p.ExpectedYield, &p.CurrentPrice,
		&p.Currency, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

// GetAllPositions returns every stored position, most recently updated first.
func (db *DB) GetAllPositions() ([]*models.Position, error) {
	query := `
		SELECT id, figi, ticker, quantity, average_price, expected_yield, current_price, currency, created_at, updated_at
		FROM positions
		ORDER BY updated_at DESC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		err := rows.Scan(
			&p.ID, &p.Figi, &p.Ticker, &p.Quantity,
			&p.AveragePrice, &p.ExpectedYield, &p.CurrentPrice,
			&p.Currency, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}
	return positions, rows.Err()
}
