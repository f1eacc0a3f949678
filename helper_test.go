package rpi

import (
	"context"
	"slices"
	"testing"

	"github.com/etnz/rpi/date"
)

// day is a helper for test to create a date from a const
func day(s string) date.Date { return date.MustParse(s) }

// series is a helper for test to create a price series from consts
func series(points map[string]float64) *PriceSeries {
	s := new(PriceSeries)
	for on, p := range points {
		s.Append(day(on), P(p))
	}
	return s
}

// market is a helper for test to create a calculator over items and their series.
// An item with a nil series is in the catalog but has no prices.
func market(items map[string]map[string]float64) *Calculator {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	slices.Sort(names)

	catalog := new(Catalog)
	prices := make(Prices)
	for i, name := range names {
		id := ItemID(i + 1)
		catalog.Add(name, id)
		if items[name] != nil {
			prices[id] = series(items[name])
		}
	}
	return &Calculator{Catalog: catalog, Prices: prices}
}

// untouchable fails the test if it is ever used to resolve anything.
type untouchable struct{ t *testing.T }

func (u untouchable) Lookup(name string) (ItemID, bool) {
	u.t.Errorf("Lookup(%q) called, want no resolution", name)
	return 0, false
}

func (u untouchable) PriceSeries(_ context.Context, id ItemID) (*PriceSeries, bool) {
	u.t.Errorf("PriceSeries(%v) called, want no resolution", id)
	return nil, false
}
