package rpi

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Coins is the currency code of in-game prices.
const Coins = "GP"

func init() {
	// coins have no fractional part and are displayed like "1,234 gp".
	money.AddCurrency(Coins, "gp", "1 $", ".", ",", 0)
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Price is an amount of coins.
type Price struct {
	value decimal.Decimal
}

// P returns a Price for value.
func P[T float64 | int | int64 | decimal.Decimal](value T) Price {
	return Price{value: newDecimal(value)}
}

func (p Price) Decimal() decimal.Decimal     { return p.value }
func (p Price) IsZero() bool                 { return p.value.IsZero() }
func (p Price) IsNegative() bool             { return p.value.IsNegative() }
func (p Price) Equal(q Price) bool           { return p.value.Equal(q.value) }
func (p Price) AsFloat() float64             { return p.value.InexactFloat64() }
func (p Price) Cmp(q Price) int              { return p.value.Cmp(q.value) }
func (p Price) MarshalJSON() ([]byte, error) { return p.value.MarshalJSON() }

func (p *Price) UnmarshalJSON(data []byte) error { return p.value.UnmarshalJSON(data) }

// String returns the price rounded to whole coins, e.g. "1,234 gp".
func (p Price) String() string {
	cur := money.GetCurrency(Coins)
	return cur.Formatter().Format(p.value.Round(0).IntPart())
}

// ChangeTo returns the percent change from p to q.
//
// A zero starting price has no meaningful change, it is reported as 0%.
func (p Price) ChangeTo(q Price) Percent {
	if p.value.IsZero() {
		return 0
	}
	change := q.value.Sub(p.value).Div(p.value).Shift(2)
	return Percent(change.InexactFloat64())
}

// mean returns the arithmetic mean of prices, prices must not be empty.
func mean(prices []decimal.Decimal) Price {
	return Price{value: decimal.Avg(prices[0], prices[1:]...)}
}
