package invest

import (
	"github.com/shopspring/decimal"

	"github.com/dkazakov/invest-aggregator/internal/models"
	"github.com/dkazakov/invest-aggregator/internal/tinkoff"
)

// defaultCurrency is assumed whenever the remote API omits one.
const defaultCurrency = "RUB"

// normalizePositions flattens a raw positions response into one heterogeneous
// listing: securities, then currencies, then futures, each group in source
// order. Consumers filter on the `type` discriminator.
func normalizePositions(resp *tinkoff.GetPositionsResponse) models.PositionsSnapshot {
	entries := make([]models.PositionEntry, 0,
		len(resp.Securities)+len(resp.Currencies)+len(resp.Futures))

	for _, s := range resp.Securities {
		entries = append(entries, &models.SecurityEntry{
			Type:           models.EntryTypeSecurity,
			Figi:           s.Figi,
			Ticker:         s.Ticker,
			InstrumentType: s.InstrumentType,
			Balance:        s.Balance,
			PositionUID:    s.PositionUID,
		})
	}

	for _, c := range resp.Currencies {
		entries = append(entries, &models.CurrencyEntry{
			Type:     models.EntryTypeCurrency,
			Currency: c.Currency,
			Balance:  c.Balance,
			Blocked:  c.Blocked,
		})
	}

	for _, f := range resp.Futures {
		currency := defaultCurrency
		if f.AveragePositionPrice != nil && f.AveragePositionPrice.Currency != "" {
			currency = f.AveragePositionPrice.Currency
		}
		entries = append(entries, &models.FutureEntry{
			Type:           models.EntryTypeFuture,
			Figi:           f.Figi,
			Ticker:         f.Ticker,
			Name:           f.Name,
			InstrumentType: "Future",
			Balance:        f.Balance,
			Blocked:        f.Blocked,
			PositionUID:    f.PositionUID,
			AveragePrice:   decimalOrNil(f.AveragePositionPrice),
			ExpectedYield:  decimalOrNil(f.ExpectedYield),
			CurrentPrice:   decimalOrNil(f.CurrentPrice),
			Currency:       currency,
		})
	}

	return models.PositionsSnapshot{Entries: entries}
}

// portfolioAttrs maps one portfolio position onto persisted-position
// attributes. The figi identifier is mandatory; everything else defaults.
func portfolioAttrs(p *tinkoff.PortfolioPosition) (models.PositionAttrs, error) {
	if p.Figi == "" {
		return models.PositionAttrs{}, &ValidationError{Field: "figi"}
	}

	var quantity int64
	if p.Quantity != nil {
		quantity = p.Quantity.Units
	}

	currency := defaultCurrency
	if p.AveragePositionPrice != nil && p.AveragePositionPrice.Currency != "" {
		currency = p.AveragePositionPrice.Currency
	}

	return models.PositionAttrs{
		Ticker:        p.Ticker,
		Quantity:      quantity,
		AveragePrice:  tinkoff.DecimalFromMoney(p.AveragePositionPrice),
		ExpectedYield: tinkoff.DecimalFromMoney(p.ExpectedYield),
		CurrentPrice:  tinkoff.DecimalFromMoney(p.CurrentPrice),
		Currency:      currency,
	}, nil
}

// instrumentInfo extracts the fixed field set from a GetInstrumentBy
// response. Absent fields stay nil; lot defaults to 1.
func instrumentInfo(resp *tinkoff.GetInstrumentByResponse) *models.InstrumentInfo {
	info := &models.InstrumentInfo{Lot: 1}
	in := resp.Instrument
	if in == nil {
		return info
	}

	info.Figi = in.Figi
	info.Ticker = in.Ticker
	info.ISIN = in.ISIN
	info.Name = in.Name
	info.Type = in.InstrumentType
	info.Currency = in.Currency
	if in.Lot != nil {
		info.Lot = *in.Lot
	}
	info.MinPriceIncrement = decimalOrNil(in.MinPriceIncrement)
	info.Exchange = in.Exchange
	info.Country = in.CountryOfRisk
	info.Sector = in.Sector
	info.ClassCode = in.ClassCode
	return info
}

func decimalOrNil(m *tinkoff.MoneyValue) *decimal.Decimal {
	if m == nil {
		return nil
	}
	d := tinkoff.DecimalFromMoney(m)
	return &d
}
