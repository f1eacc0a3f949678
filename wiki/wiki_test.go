package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/rpi"
)

const mapping = `[
  {"examine":"I'd better be careful eating this.","id":385,"members":false,"lowalch":80,"limit":10000,"value":200,"highalch":120,"icon":"Shark.png","name":"Shark"},
  {"examine":"A mystical bow carved from the twisted remains of the Great Olm.","id":20997,"members":true,"limit":8,"value":1200000,"highalch":720000,"icon":"Twisted bow.png","name":"Twisted bow"},
  {"id":1,"name":"Toolkit"},
  {"examine":"Nameless.","id":2}
]`

func TestCatalog(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mapping))
	}))
	defer srv.Close()

	c := New("", nil)
	c.URL = srv.URL
	catalog, err := c.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() unexpected error: %v", err)
	}
	if agent != BrowserUserAgent {
		t.Errorf("User-Agent = %q want %q", agent, BrowserUserAgent)
	}
	if catalog.Len() != 2 {
		t.Errorf("Catalog().Len() = %d want 2", catalog.Len())
	}
	testCases := []struct {
		name   string
		want   rpi.ItemID
		wantOK bool
	}{
		{"shark", 385, true},
		{"TWISTED BOW", 20997, true},
		{"Toolkit", 0, false},
	}
	for _, tc := range testCases {
		if got, ok := catalog.Lookup(tc.name); got != tc.want || ok != tc.wantOK {
			t.Errorf("Lookup(%q) = %v, %v want %v, %v", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestCatalogError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("bot", nil)
	c.URL = srv.URL
	if _, err := c.Catalog(context.Background()); err == nil {
		t.Errorf("Catalog() want an error on a 403")
	}
}
