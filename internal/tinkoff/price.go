package tinkoff

import "github.com/shopspring/decimal"

// nanoExp is the fixed-point exponent of MoneyValue: nano counts 10^-9 units.
const nanoExp = -9

// DecimalFromMoney converts a MoneyValue into a decimal: units + nano/1e9.
// A nil value or absent fields decode to zero; it never fails.
func DecimalFromMoney(m *MoneyValue) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Units).Add(decimal.New(int64(m.Nano), nanoExp))
}
