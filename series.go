package rpi

import (
	"context"
	"iter"

	"github.com/etnz/rpi/date"
	"github.com/shopspring/decimal"
)

// ItemID identifies a tradeable item in the catalog.
type ItemID int64

// Quote is a resolved price and the day it was actually observed, which may be
// earlier than the requested day.
type Quote struct {
	Price Price     `json:"price"`
	On    date.Date `json:"on"`
}

// PriceSeries is a time-ordered, possibly gapped sequence of prices for one item.
//
// The zero value is an empty series ready to use.
type PriceSeries struct {
	history date.History[decimal.Decimal]
}

// NewPriceSeries returns a series with the given points.
func NewPriceSeries(points map[date.Date]Price) *PriceSeries {
	s := new(PriceSeries)
	for on, p := range points {
		s.Append(on, p)
	}
	return s
}

// Append records the price observed on a day, replacing any previous observation for that day.
func (s *PriceSeries) Append(on date.Date, p Price) *PriceSeries {
	s.history.Append(on, p.value)
	return s
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return s.history.Len() }

// Points iterates over observations in chronological order.
func (s *PriceSeries) Points() iter.Seq2[date.Date, Price] {
	return func(yield func(date.Date, Price) bool) {
		for on, v := range s.history.Values() {
			if !yield(on, Price{value: v}) {
				return
			}
		}
	}
}

// First returns the earliest observation.
func (s *PriceSeries) First() (Quote, bool) {
	on, v, ok := s.history.First()
	return Quote{Price: Price{value: v}, On: on}, ok
}

// Latest returns the most recent observation.
func (s *PriceSeries) Latest() (Quote, bool) {
	on, v, ok := s.history.Latest()
	return Quote{Price: Price{value: v}, On: on}, ok
}

// AsOf returns the most recent observation at or before day.
// ok is false if the series starts after day.
func (s *PriceSeries) AsOf(day date.Date) (q Quote, ok bool) {
	on, v, ok := s.history.ValueAsOf(day)
	if !ok {
		return Quote{}, false
	}
	return Quote{Price: Price{value: v}, On: on}, true
}

// Average returns the arithmetic mean of the observations within r, dated by the
// last observation in r.
// ok is false if r contains no observation.
func (s *PriceSeries) Average(r date.Range) (q Quote, ok bool) {
	var values []decimal.Decimal
	for on, v := range s.history.Between(r) {
		values = append(values, v)
		q.On = on
	}
	if len(values) == 0 {
		return Quote{}, false
	}
	q.Price = mean(values)
	return q, true
}

// PriceResolver gives access to the price series of items.
//
// Implementations decide how prices are fetched, cached, kept fresh or gap-filled;
// failures are reported as absent (ok == false), never as errors.
type PriceResolver interface {
	PriceSeries(ctx context.Context, id ItemID) (s *PriceSeries, ok bool)
}

// Prices is an in-memory PriceResolver.
type Prices map[ItemID]*PriceSeries

// PriceSeries implements PriceResolver.
func (p Prices) PriceSeries(_ context.Context, id ItemID) (*PriceSeries, bool) {
	s, ok := p[id]
	return s, ok && s != nil
}
