package httpcache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/rpi/date"
)

// counter is a test server that counts the requests it receives.
func counter(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"hits":%d}`, n)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestTransportCachesWithinPeriod(t *testing.T) {
	srv, hits := counter(t, http.StatusOK)
	today := date.New(2025, 10, 15)
	tr := &Transport{Dir: t.TempDir(), Period: date.Monthly, Today: func() date.Date { return today }}
	client := &http.Client{Transport: tr}

	var got struct{ Hits int }
	for range 3 {
		if err := GetJSON(context.Background(), client, srv.URL+"/item/385", &got); err != nil {
			t.Fatalf("GetJSON() unexpected error: %v", err)
		}
	}
	if got.Hits != 1 || hits.Load() != 1 {
		t.Errorf("GetJSON() = %d, server hit %d times want 1, 1", got.Hits, hits.Load())
	}

	// Still the same month.
	today = date.New(2025, 10, 31)
	if err := GetJSON(context.Background(), client, srv.URL+"/item/385", &got); err != nil {
		t.Fatalf("GetJSON() unexpected error: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times within the month want 1", hits.Load())
	}

	// Next month the entry has expired.
	today = date.New(2025, 11, 1)
	if err := GetJSON(context.Background(), client, srv.URL+"/item/385", &got); err != nil {
		t.Fatalf("GetJSON() unexpected error: %v", err)
	}
	if got.Hits != 2 {
		t.Errorf("GetJSON() after expiry = %d want 2", got.Hits)
	}
}

func TestTransportUserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()
	client := &http.Client{Transport: &Transport{Dir: t.TempDir(), UserAgent: "rpi test"}}

	var got map[string]any
	if err := GetJSON(context.Background(), client, srv.URL, &got); err != nil {
		t.Fatalf("GetJSON() unexpected error: %v", err)
	}
	if agent != "rpi test" {
		t.Errorf("User-Agent = %q want %q", agent, "rpi test")
	}
}

func TestTransportDoesNotCacheErrors(t *testing.T) {
	srv, hits := counter(t, http.StatusNotFound)
	client := &http.Client{Transport: &Transport{Dir: t.TempDir(), Period: date.Daily}}

	var got struct{ Hits int }
	for range 2 {
		if err := GetJSON(context.Background(), client, srv.URL+"/item/1", &got); err == nil {
			t.Errorf("GetJSON() want an error for a 404")
		}
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times want 2", hits.Load())
	}
}
