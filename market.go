package rpi

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/etnz/rpi/date"
)

// Market is an offline ItemCatalog and PriceResolver, read from and written to a
// JSON object of item names to their prices by day:
//
//	{"Shark": {"2025-01-01": 950, "2025-06-01": 1020}}
//
// The zero value is an empty market ready to use.
type Market struct {
	Catalog
	Prices
	names []string
}

// Add registers the series of an item under the next free ID and returns that ID.
// An existing item with the same name is replaced.
func (m *Market) Add(name string, s *PriceSeries) ItemID {
	if m.Prices == nil {
		m.Prices = make(Prices)
	}
	id, exists := m.Lookup(name)
	if !exists {
		id = ItemID(len(m.names) + 1)
		m.names = append(m.names, name)
		m.Catalog.Add(name, id)
	}
	m.Prices[id] = s
	return id
}

// DecodeMarket reads a market, items are added in name order.
func DecodeMarket(r io.Reader) (*Market, error) {
	var raw map[string]map[string]Price
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("cannot decode market: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	m := new(Market)
	for _, name := range names {
		s := new(PriceSeries)
		for day, p := range raw[name] {
			on, err := date.Parse(day)
			if err != nil {
				return nil, fmt.Errorf("cannot decode prices of %q: %w", name, err)
			}
			s.Append(on, p)
		}
		m.Add(name, s)
	}
	return m, nil
}

// EncodeMarket writes m with items in insertion order and prices in chronological order.
func EncodeMarket(w io.Writer, m *Market) error {
	var items jsonObjectWriter
	for _, name := range m.names {
		id, _ := m.Lookup(name)
		var points jsonObjectWriter
		if s := m.Prices[id]; s != nil {
			for on, p := range s.Points() {
				points.Append(on.String(), p)
			}
		}
		items.Append(name, &points)
	}
	data, err := items.MarshalJSON()
	if err != nil {
		return fmt.Errorf("cannot encode market: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
