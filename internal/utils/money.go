package utils

import (
	"encoding/json"
	"reflect"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale of every stored amount.
const MoneyPlaces = 2

var (
	// MaxPrice is the largest value of a NUMERIC(10,2) column.
	MaxPrice = decimal.RequireFromString("99999999.99")
	// MaxTotal is the largest value of a NUMERIC(12,2) column.
	MaxTotal = decimal.RequireFromString("9999999999.99")
)

// Money is a decimal amount written to JSON as a fixed two place string,
// e.g. "80.00". It reads both strings and bare numbers.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MustMoney parses s and panics on failure. Meant for constants and tests.
func MustMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(MoneyPlaces) + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	if err := m.Decimal.UnmarshalJSON(b); err != nil {
		// json fills in the field name for type errors
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(m.Decimal)}
	}
	return nil
}
