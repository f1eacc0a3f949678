// Package jagex resolves item price series from the Grand Exchange graph API.
//
// The graph API returns up to 180 days of daily prices keyed by a timestamp in
// milliseconds:
//
//	{"daily": {"1735689600000": 712, ...}, "average": {...}}
package jagex

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"github.com/etnz/rpi/httpcache"
)

// GraphURL is the graph endpoint, formatted with the item id.
const GraphURL = "https://services.runescape.com/m=itemdb_oldschool/api/graph/%d.json"

// Resolver is a rpi.PriceResolver fetching series from the graph API.
//
// Series are kept in memory once fetched. A Resolver is safe for concurrent use.
type Resolver struct {
	client *http.Client
	// URL is the graph endpoint format, GraphURL by default.
	URL string
	// FillDaily forward fills every missing day of the fetched series.
	FillDaily bool

	mu     sync.Mutex
	series map[rpi.ItemID]*rpi.PriceSeries
}

// NewResolver returns a Resolver using client, or a daily disk cached client if nil.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = httpcache.Daily()
	}
	return &Resolver{
		client: client,
		URL:    GraphURL,
		series: make(map[rpi.ItemID]*rpi.PriceSeries),
	}
}

// PriceSeries implements rpi.PriceResolver. Fetch failures are logged and reported
// as absent.
func (r *Resolver) PriceSeries(ctx context.Context, id rpi.ItemID) (*rpi.PriceSeries, bool) {
	r.mu.Lock()
	s, ok := r.series[id]
	r.mu.Unlock()
	if ok {
		return s, true
	}

	s, err := r.Fetch(ctx, id)
	if err != nil {
		log.Printf("could not fetch price graph for item %d: %v", id, err)
		return nil, false
	}
	if r.FillDaily {
		s = FillDaily(s)
	}
	r.mu.Lock()
	r.series[id] = s
	r.mu.Unlock()
	return s, true
}

// Fetch downloads and parses the daily series of an item.
func (r *Resolver) Fetch(ctx context.Context, id rpi.ItemID) (*rpi.PriceSeries, error) {
	var jobj any
	if err := httpcache.GetJSON(ctx, r.client, fmt.Sprintf(r.URL, id), &jobj); err != nil {
		return nil, err
	}
	return Parse(jobj)
}

// Parse extracts the daily prices of a decoded graph payload.
// A payload without daily prices is an empty series.
func Parse(jobj any) (*rpi.PriceSeries, error) {
	s := new(rpi.PriceSeries)
	if m, ok := jobj.(map[string]any); ok && m["daily"] == nil {
		return s, nil
	}
	jval, err := jsonpath.Get("$.daily", jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot read daily prices: %w", err)
	}
	daily, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot read daily prices: not an object %v", jval)
	}
	for key, v := range daily {
		ms, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", key, err)
		}
		price, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("invalid price at %q: %v", key, v)
		}
		s.Append(date.FromTime(time.UnixMilli(ms).UTC()), rpi.P(price))
	}
	return s, nil
}

// FillDaily returns a series with a price for every day between the first and the
// latest observations of s, each missing day taking the price of the day before.
func FillDaily(s *rpi.PriceSeries) *rpi.PriceSeries {
	filled := new(rpi.PriceSeries)
	first, ok := s.First()
	if !ok {
		return filled
	}
	latest, _ := s.Latest()
	for day := first.On; !day.After(latest.On); day = day.Add(1) {
		q, _ := s.AsOf(day)
		filled.Append(day, q.Price)
	}
	return filled
}
