package tinkoff

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecimalFromMoney(t *testing.T) {
	tests := []struct {
		name  string
		money *MoneyValue
		want  decimal.Decimal
	}{
		{"units and nano", &MoneyValue{Units: 5, Nano: 500000000}, decimal.NewFromFloat(5.5)},
		{"empty value", &MoneyValue{}, decimal.Zero},
		{"nil value", nil, decimal.Zero},
		{"units only", &MoneyValue{Units: 250}, decimal.NewFromInt(250)},
		{"nano only", &MoneyValue{Nano: 10000000}, decimal.NewFromFloat(0.01)},
		{"negative yield", &MoneyValue{Units: -12, Nano: -250000000}, decimal.NewFromFloat(-12.25)},
		{"full nano precision", &MoneyValue{Units: 1, Nano: 123456789}, decimal.RequireFromString("1.123456789")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecimalFromMoney(tt.money)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
