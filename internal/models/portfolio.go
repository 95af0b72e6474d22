package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is the cached result of a portfolio fetch. It is never
// persisted; its lifetime is bounded by the cache TTL.
type PortfolioSnapshot struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	Positions   []*Position     `json:"positions"`
	Status      string          `json:"status"`
}

// Position entry discriminators.
const (
	EntryTypeSecurity = "security"
	EntryTypeCurrency = "currency"
	EntryTypeFuture   = "future"
)

// PositionEntry is one element of a raw positions listing: a security, a
// currency balance, or a future, distinguished by its EntryType.
type PositionEntry interface {
	EntryType() string
}

// SecurityEntry is a security position from the `securities` listing.
type SecurityEntry struct {
	Type           string  `json:"type"`
	Figi           string  `json:"figi"`
	Ticker         *string `json:"ticker"`
	InstrumentType string  `json:"instrument_type"`
	Balance        int64   `json:"balance"`
	PositionUID    *string `json:"position_uid"`
}

func (e *SecurityEntry) EntryType() string { return EntryTypeSecurity }

// CurrencyEntry is a currency balance from the `currencies` listing.
type CurrencyEntry struct {
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  int64  `json:"balance"`
	Blocked  int64  `json:"blocked"`
}

func (e *CurrencyEntry) EntryType() string { return EntryTypeCurrency }

// FutureEntry is a futures position from the `futures` listing.
type FutureEntry struct {
	Type           string           `json:"type"`
	Figi           string           `json:"figi"`
	Ticker         *string          `json:"ticker"`
	Name           *string          `json:"name"`
	InstrumentType string           `json:"instrument_type"`
	Balance        int64            `json:"balance"`
	Blocked        int64            `json:"blocked"`
	PositionUID    *string          `json:"position_uid"`
	AveragePrice   *decimal.Decimal `json:"average_price"`
	ExpectedYield  *decimal.Decimal `json:"expected_yield"`
	CurrentPrice   *decimal.Decimal `json:"current_price"`
	Currency       string           `json:"currency"`
}

func (e *FutureEntry) EntryType() string { return EntryTypeFuture }

// PositionsSnapshot is a flat heterogeneous listing: securities first, then
// currencies, then futures, each group in source order. Consumers filter on
// the `type` field.
type PositionsSnapshot struct {
	Entries []PositionEntry
}

func (s PositionsSnapshot) MarshalJSON() ([]byte, error) {
	if s.Entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Entries)
}

// UnmarshalJSON restores the typed entries from a cached snapshot using the
// `type` discriminator on each element.
func (s *PositionsSnapshot) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Entries = make([]PositionEntry, 0, len(raw))
	for _, item := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return err
		}

		var entry PositionEntry
		switch head.Type {
		case EntryTypeSecurity:
			entry = &SecurityEntry{}
		case EntryTypeCurrency:
			entry = &CurrencyEntry{}
		case EntryTypeFuture:
			entry = &FutureEntry{}
		default:
			return fmt.Errorf("unknown position entry type %q", head.Type)
		}
		if err := json.Unmarshal(item, entry); err != nil {
			return err
		}
		s.Entries = append(s.Entries, entry)
	}
	return nil
}
