// Package wiki loads the item catalog from the OSRS Wiki real-time prices API.
package wiki

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/etnz/rpi"
	"github.com/go-resty/resty/v2"
)

// MappingURL lists every tradeable item with its identifier.
const MappingURL = "https://prices.runescape.wiki/api/v1/osrs/mapping"

// BrowserUserAgent is sent to the mapping API, which blocks unknown bots.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Item is an entry of the mapping API.
type Item struct {
	ID       rpi.ItemID `json:"id"`
	Name     string     `json:"name"`
	Examine  string     `json:"examine"`
	Members  bool       `json:"members"`
	Limit    int        `json:"limit"`
	Value    int64      `json:"value"`
	LowAlch  int64      `json:"lowalch"`
	HighAlch int64      `json:"highalch"`
	Icon     string     `json:"icon"`
}

// Client reads the mapping API.
type Client struct {
	client *resty.Client
	// URL of the mapping endpoint, MappingURL by default.
	URL string
}

// New returns a Client sending userAgent (BrowserUserAgent if empty) through transport
// (http.DefaultTransport if nil).
func New(userAgent string, transport http.RoundTripper) *Client {
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	client := resty.New().
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if transport != nil {
		client.SetTransport(transport)
	}
	return &Client{client: client, URL: MappingURL}
}

// Items returns all the items of the mapping.
func (c *Client) Items(ctx context.Context) ([]Item, error) {
	var items []Item
	resp, err := c.client.R().SetContext(ctx).SetResult(&items).Get(c.URL)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch item mapping: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("cannot fetch item mapping: %s", resp.Status())
	}
	return items, nil
}

// Catalog returns the catalog of tradeable items, those with a name, an id and an
// examine text.
func (c *Client) Catalog(ctx context.Context) (*rpi.Catalog, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	catalog := new(rpi.Catalog)
	for _, item := range items {
		if item.Name == "" || item.ID == 0 || item.Examine == "" {
			continue
		}
		catalog.Add(item.Name, item.ID)
	}
	log.Printf("loaded %d items out of %d in the mapping", catalog.Len(), len(items))
	return catalog, nil
}
