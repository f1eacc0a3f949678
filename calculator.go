package rpi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/etnz/rpi/date"
)

// ErrInvalidWindow is returned when the start of a calculation is not before its end.
var ErrInvalidWindow = errors.New("invalid time window")

// Calculator computes basket indexes from an item catalog and a price resolver.
//
// A Calculator holds no state between calls, it is safe for concurrent use as long
// as its collaborators are.
type Calculator struct {
	Catalog ItemCatalog
	Prices  PriceResolver
	// Workers is the number of items resolved concurrently. 0 or 1 resolves
	// items one after the other.
	Workers int
}

// quoter selects the old and the new quote of an item in its series.
// It returns a non empty Reason when the item must be excluded.
type quoter func(s *PriceSeries) (old, new Quote, reason Reason)

// outcome is the resolution of a single basket entry.
type outcome struct {
	Contribution
	reason Reason
}

// Compute returns the weighted index between the as-of prices at from and at to.
//
// Items that cannot be resolved are excluded and the index is computed over the
// remaining ones, with weights renormalized. The Result value is undefined when
// no item remains.
//
// It returns an error if the basket is invalid, if from is not before to, or if ctx
// is cancelled, in which case there is no Result at all.
func (c *Calculator) Compute(ctx context.Context, b Basket, from, to date.Date) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("cannot compute index: %w", err)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("cannot compute index from %s to %s: %w", from, to, ErrInvalidWindow)
	}

	res := &Result{From: date.Day(from), To: date.Day(to)}
	err := c.compute(ctx, b, res, func(s *PriceSeries) (Quote, Quote, Reason) {
		old, ok := s.AsOf(from)
		if !ok {
			return Quote{}, Quote{}, MissingPriceAtStart
		}
		cur, ok := s.AsOf(to)
		if !ok {
			return Quote{}, Quote{}, MissingPriceAtEnd
		}
		return old, cur, ""
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ComputeAverage returns the weighted index between the mean prices over from and
// over to.
//
// An item with no observation within either range is excluded, even if it has
// prices outside of it. Both ranges must be valid and from must start before to.
func (c *Calculator) ComputeAverage(ctx context.Context, b Basket, from, to date.Range) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("cannot compute average index: %w", err)
	}
	if !from.Valid() || !to.Valid() || !from.From.Before(to.From) {
		return nil, fmt.Errorf("cannot compute average index from %s to %s: %w", from, to, ErrInvalidWindow)
	}

	res := &Result{From: from, To: to, Averaged: true}
	err := c.compute(ctx, b, res, func(s *PriceSeries) (Quote, Quote, Reason) {
		old, ok := s.Average(from)
		if !ok {
			return Quote{}, Quote{}, MissingAverageForPeriod
		}
		cur, ok := s.Average(to)
		if !ok {
			return Quote{}, Quote{}, MissingAverageForPeriod
		}
		return old, cur, ""
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Item returns the price change of a single item between the as-of prices at from and to.
// If the item cannot be resolved the error is an *ExclusionError.
func (c *Calculator) Item(ctx context.Context, name string, from, to date.Date) (*Contribution, error) {
	res, err := c.Compute(ctx, NewBasket(Entry{Name: name, Weight: 1}), from, to)
	if err != nil {
		return nil, err
	}
	if len(res.Exclusions) > 0 {
		return nil, &ExclusionError{res.Exclusions[0]}
	}
	return &res.Contributions[0], nil
}

// compute resolves every entry of b and aggregates the survivors into res.
func (c *Calculator) compute(ctx context.Context, b Basket, res *Result, quotes quoter) error {
	outcomes := make([]outcome, len(b.entries))
	resolve := func(i int) { outcomes[i] = c.resolve(ctx, b.entries[i], quotes) }

	if c.Workers > 1 {
		if err := fanOut(ctx, c.Workers, len(outcomes), resolve); err != nil {
			return err
		}
	} else {
		for i := range outcomes {
			if err := ctx.Err(); err != nil {
				return err
			}
			resolve(i)
		}
	}

	// Reduce in basket order, whatever the completion order was.
	// Weights are scaled by the largest one so that their sum stays finite.
	var largest, total float64
	for _, o := range outcomes {
		if o.reason == "" {
			largest = max(largest, o.Weight)
		}
	}
	for _, o := range outcomes {
		if o.reason == "" {
			total += o.Weight / largest
		}
	}
	res.Contributions = make([]Contribution, 0, len(outcomes))
	res.Exclusions = make([]Exclusion, 0)
	var index Percent
	for _, o := range outcomes {
		if o.reason != "" {
			res.Exclusions = append(res.Exclusions, Exclusion{Item: o.Item, Reason: o.reason})
			continue
		}
		o.Share = o.Weight / largest / total
		index += Percent(o.Share) * o.Change
		res.Contributions = append(res.Contributions, o.Contribution)
	}
	if total > 0 {
		res.Value = &index
	}
	return nil
}

// resolve runs the resolution steps of a single entry, stopping at the first failure.
func (c *Calculator) resolve(ctx context.Context, e Entry, quotes quoter) outcome {
	o := outcome{Contribution: Contribution{Item: e.Name, Weight: e.Weight}}
	id, ok := c.Catalog.Lookup(e.Name)
	if !ok {
		o.reason = UnknownItem
		return o
	}
	s, ok := c.Prices.PriceSeries(ctx, id)
	if !ok || s.Len() == 0 {
		o.reason = NoPriceSeries
		return o
	}
	old, cur, reason := quotes(s)
	if reason != "" {
		o.reason = reason
		return o
	}
	o.Old, o.New = old, cur
	o.Change = old.Price.ChangeTo(cur.Price)
	return o
}

// fanOut runs job(0..n-1) on at most workers goroutines and waits for them.
// No job is started once ctx is done, and ctx's error is returned.
func fanOut(ctx context.Context, workers, n int, job func(i int)) error {
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
		case semaphore <- struct{}{}:
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-semaphore }()
				job(i)
			}()
			continue
		}
		break
	}
	wg.Wait()
	return ctx.Err()
}
