package rpi

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/etnz/rpi/date"
)

// MaxHistory is the maximum number of points a history walks back.
const MaxHistory = 240

// Granularity selects how a history compares prices one year apart.
type Granularity int

const (
	// PointInTime compares the as-of prices at both month ends.
	PointInTime Granularity = iota
	// MonthlyAverage compares the mean prices over both months.
	MonthlyAverage
)

func (g Granularity) String() string {
	switch g {
	case PointInTime:
		return "point"
	case MonthlyAverage:
		return "average"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// ParseGranularity parses "point" or "average".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "point", "point-in-time":
		return PointInTime, nil
	case "average", "monthly", "monthly-average":
		return MonthlyAverage, nil
	default:
		return 0, fmt.Errorf("unknown granularity %q, want point or average", s)
	}
}

// HistoryOptions configures a history walk.
type HistoryOptions struct {
	Granularity Granularity
	// Limit is the maximum number of points, 0 or more than MaxHistory means MaxHistory.
	Limit int
	// Today is the reference day, the walk starts at the end of the month before it.
	// The zero value means date.Today().
	Today date.Date
}

func (o HistoryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > MaxHistory {
		return MaxHistory
	}
	return o.Limit
}

func (o HistoryOptions) today() date.Date {
	if o.Today.IsZero() {
		return date.Today()
	}
	return o.Today
}

// Point is a year over year index value at the end of a month.
type Point struct {
	Date   date.Date `json:"date"`
	Index  Percent   `json:"index"`
	Result *Result   `json:"-"`
}

// History walks back month by month from the last completed month, yielding the
// year over year index of b at each month end.
//
// The walk stops at the first month whose index is undefined, after the limit, or
// at the first error. Errors are yielded once, with a zero Point.
// Points are yielded most recent first.
func (c *Calculator) History(ctx context.Context, b Basket, opts HistoryOptions) iter.Seq2[Point, error] {
	return func(yield func(Point, error) bool) {
		if err := b.Validate(); err != nil {
			yield(Point{}, fmt.Errorf("cannot compute history: %w", err))
			return
		}
		end := opts.today().LastCompletedMonth()
		for range opts.limit() {
			res, err := c.yearOverYear(ctx, b, end, opts.Granularity)
			if err != nil {
				yield(Point{}, err)
				return
			}
			value, ok := res.Index()
			if !ok {
				return
			}
			if !yield(Point{Date: end, Index: value, Result: res}, nil) {
				return
			}
			end = end.StartOf(date.Monthly).Add(-1)
		}
	}
}

// CollectHistory returns the points of History in chronological order.
func (c *Calculator) CollectHistory(ctx context.Context, b Basket, opts HistoryOptions) ([]Point, error) {
	var points []Point
	for p, err := range c.History(ctx, b, opts) {
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	slices.Reverse(points)
	return points, nil
}

// yearOverYear computes the index between the same month end one year apart.
// February 29th compares to February 28th of the year before.
func (c *Calculator) yearOverYear(ctx context.Context, b Basket, end date.Date, g Granularity) (*Result, error) {
	prior := end.YearBefore()
	if g == MonthlyAverage {
		return c.ComputeAverage(ctx, b, date.NewRange(prior, date.Monthly), date.NewRange(end, date.Monthly))
	}
	return c.Compute(ctx, b, prior, end)
}
