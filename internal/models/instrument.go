package models

import "github.com/shopspring/decimal"

// InstrumentInfo is the cached result of an instrument lookup by FIGI.
// Every field the remote API omits stays nil, except Lot which defaults to 1.
type InstrumentInfo struct {
	Figi              *string          `json:"figi"`
	Ticker            *string          `json:"ticker"`
	ISIN              *string          `json:"isin"`
	Name              *string          `json:"name"`
	Type              *string          `json:"type"`
	Currency          *string          `json:"currency"`
	Lot               int              `json:"lot"`
	MinPriceIncrement *decimal.Decimal `json:"min_price_increment"`
	Exchange          *string          `json:"exchange"`
	Country           *string          `json:"country"`
	Sector            *string          `json:"sector"`
	ClassCode         *string          `json:"class_code"`
}
