package rpi

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestNewBasketFoldsDuplicates(t *testing.T) {
	b := NewBasket(Entry{"Shark", 1}, Entry{"Coal", 2}, Entry{"SHARK ", 3})
	want := []Entry{{"Shark", 3}, {"Coal", 2}}
	if got := b.Entries(); !slices.Equal(got, want) {
		t.Errorf("NewBasket() entries = %v want %v", got, want)
	}
}

func TestBasketEntriesIsACopy(t *testing.T) {
	b := NewBasket(Entry{"Shark", 1})
	b.Entries()[0].Weight = 42
	if got := b.Entries()[0].Weight; got != 1 {
		t.Errorf("Basket weight changed through Entries() to %v", got)
	}
}

func TestBasketValidate(t *testing.T) {
	testCases := []struct {
		name    string
		basket  Basket
		wantErr error
	}{
		{"default", DefaultBasket, nil},
		{"unnormalized", NewBasket(Entry{"A", 3}, Entry{"B", 7}), nil},
		{"empty", NewBasket(), ErrEmptyBasket},
		{"zero", NewBasket(Entry{"A", 0}), ErrInvalidWeight},
		{"negative among valid", NewBasket(Entry{"A", 1}, Entry{"B", -0.5}), ErrInvalidWeight},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.basket.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v want %v", err, tc.wantErr)
			}
		})
	}
}

func TestBasketJSON(t *testing.T) {
	const doc = `{"Twisted bow":0.1,"Shark":0.25,"Adamantite bar":0.2}`
	b, err := DecodeBasket(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeBasket() unexpected error: %v", err)
	}
	want := []Entry{{"Twisted bow", 0.1}, {"Shark", 0.25}, {"Adamantite bar", 0.2}}
	if got := b.Entries(); !slices.Equal(got, want) {
		t.Errorf("DecodeBasket() entries = %v want %v", got, want)
	}

	got, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}
	if string(got) != doc {
		t.Errorf("json.Marshal() = %s want %s", got, doc)
	}
}

func TestDecodeBasketErrors(t *testing.T) {
	for _, doc := range []string{
		`["Shark"]`,
		`{"Shark":"a lot"}`,
		`{"Shark":1`,
	} {
		if _, err := DecodeBasket(strings.NewReader(doc)); err == nil {
			t.Errorf("DecodeBasket(%s) want an error", doc)
		}
	}
}
