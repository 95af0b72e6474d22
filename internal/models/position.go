package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a persisted portfolio position. Keyed globally by FIGI: at most
// one row per instrument, shared across every account that holds it,
// refreshed last-writer-wins.
type Position struct {
	ID            int             `json:"id"`
	Figi          string          `json:"figi"`
	Ticker        string          `json:"ticker"`
	Quantity      int64           `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	ExpectedYield decimal.Decimal `json:"expected_yield"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PositionAttrs carries the writable fields of a Position upsert. Split from
// Position so callers cannot touch identity or timestamps.
type PositionAttrs struct {
	Ticker        string
	Quantity      int64
	AveragePrice  decimal.Decimal
	ExpectedYield decimal.Decimal
	CurrentPrice  decimal.Decimal
	Currency      string
}
