package rpi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrEmptyBasket is returned when a calculation is requested on an empty basket.
	ErrEmptyBasket = errors.New("empty basket")
	// ErrInvalidWeight is returned for a weight that is not a strictly positive number.
	ErrInvalidWeight = errors.New("invalid weight")
)

// Entry is an item of a basket and its relative weight.
type Entry struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Basket is an immutable, ordered collection of items with relative weights.
//
// Weights need not sum to 1, they are normalized by the calculation. Item names
// are case-insensitive. The order only affects the order of exclusions in a
// Result, never the index value.
type Basket struct {
	entries []Entry
}

// DefaultBasket is the reference basket of common goods.
var DefaultBasket = NewBasket(
	Entry{"Shark", 0.25},
	Entry{"Prayer potion(4)", 0.30},
	Entry{"Adamantite bar", 0.20},
	Entry{"Twisted bow", 0.10},
	Entry{"Scythe of vitur (uncharged)", 0.15},
)

// NewBasket returns a Basket of entries.
//
// Entries whose names are equal case-insensitively collapse into one: it keeps
// the position and the name of the first occurrence and the weight of the last one.
func NewBasket(entries ...Entry) Basket {
	index := make(map[string]int, len(entries))
	b := Basket{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		key := fold(e.Name)
		if i, exists := index[key]; exists {
			b.entries[i].Weight = e.Weight
			continue
		}
		index[key] = len(b.entries)
		b.entries = append(b.entries, e)
	}
	return b
}

// Len returns the number of entries.
func (b Basket) Len() int { return len(b.entries) }

// Entries returns a copy of the entries, in declared order.
func (b Basket) Entries() []Entry { return append([]Entry(nil), b.entries...) }

// Validate checks that the basket can be used in a calculation: it must not be
// empty and every weight must be a finite number greater than 0.
func (b Basket) Validate() error {
	if len(b.entries) == 0 {
		return ErrEmptyBasket
	}
	var errs error
	for _, e := range b.entries {
		if e.Weight <= 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			errs = errors.Join(errs, fmt.Errorf("%w %v for %q", ErrInvalidWeight, e.Weight, e.Name))
		}
	}
	return errs
}

// MarshalJSON encodes the basket as a JSON object, preserving the order.
func (b Basket) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, e := range b.entries {
		w.Append(e.Name, e.Weight)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object {"name": weight, ...}, preserving the order.
func (b *Basket) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil {
		return err
	} else if tok != json.Delim('{') {
		return fmt.Errorf("invalid basket: want a json object, got %v", tok)
	}
	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string) // object keys are always strings
		var weight float64
		if err := dec.Decode(&weight); err != nil {
			return fmt.Errorf("invalid weight for %q: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Weight: weight})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = NewBasket(entries...)
	return nil
}

// DecodeBasket reads a basket from a JSON object.
func DecodeBasket(r io.Reader) (Basket, error) {
	var b Basket
	data, err := io.ReadAll(r)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("cannot decode basket: %w", err)
	}
	return b, nil
}
