package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, both bounds included.
type Range struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// NewRange returns the period containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Day returns the single day range [d, d].
func Day(d Date) Range { return Range{From: d, To: d} }

// Valid reports whether From is not after To, and neither is zero.
func (r Range) Valid() bool { return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To) }

// Contains returns true if date is included in the range (bounds included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Period returns the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	switch {
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// String returns a short name for the range: "2025-03-14" for a day, "2025-03" for
// a month, "2025" for a year, and "from..to" otherwise.
func (r Range) String() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s..%s", r.From, r.To)
	}
	switch p {
	case Daily:
		return r.From.String()
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		return fmt.Sprintf("%s..%s", r.From, r.To)
	}
}
