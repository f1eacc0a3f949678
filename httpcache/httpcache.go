// Package httpcache keeps remote responses on disk so that repeated runs of the
// tool do not hammer public price APIs.
package httpcache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/rpi/date"
)

// Transport is an http.RoundTripper that stores successful GET responses on disk.
//
// Cached entries are keyed by the current period, so they expire at the start of
// the next one (every day with date.Daily).
type Transport struct {
	// Base performs the actual requests, http.DefaultTransport if nil.
	Base http.RoundTripper
	// Dir holds the cached responses, os.TempDir() if empty.
	Dir string
	// Period is the lifetime of a cached response.
	Period date.Period
	// Today returns the current day, date.Today if nil.
	Today func() date.Date
	// UserAgent, if set, replaces the User-Agent header of outgoing requests.
	UserAgent string
}

// New returns a client caching responses in dir for period.
func New(dir string, period date.Period) *http.Client {
	return &http.Client{Transport: &Transport{Dir: dir, Period: period}}
}

// Daily returns a client caching responses in the temp dir until the end of the day.
func Daily() *http.Client { return New("", date.Daily) }

func (c *Transport) base() http.RoundTripper {
	if c.Base == nil {
		return http.DefaultTransport
	}
	return c.Base
}

func (c *Transport) dir() string {
	if c.Dir == "" {
		return os.TempDir()
	}
	return c.Dir
}

// key returns a file name unique per period, method and url.
func (c *Transport) key(req *http.Request) string {
	today := date.Today
	if c.Today != nil {
		today = c.Today
	}
	key := fmt.Sprintf("%s %s %s", today().StartOf(c.Period), req.Method, req.URL.String())
	return fmt.Sprintf("rpi-%x", sha1.Sum([]byte(key)))
}

func (c *Transport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	if c.UserAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Method != http.MethodGet {
		return c.base().RoundTrip(req)
	}
	key := c.key(req)

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	err = c.put(key, resp)
	if err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *Transport) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *Transport) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir(), key), content, 0o644)
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v: %v", addr, resp.Status)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, data)
}
