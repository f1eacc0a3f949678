package rpi

import (
	"fmt"

	"github.com/etnz/rpi/date"
)

// Reason tells why an item was excluded from a calculation.
type Reason string

const (
	UnknownItem             Reason = "unknown-item"
	NoPriceSeries           Reason = "no-price-series"
	MissingPriceAtStart     Reason = "missing-price-at-start"
	MissingPriceAtEnd       Reason = "missing-price-at-end"
	MissingAverageForPeriod Reason = "missing-average-for-period"
)

// Describe returns a human readable explanation of the reason.
func (r Reason) Describe() string {
	switch r {
	case UnknownItem:
		return "ID not found"
	case NoPriceSeries:
		return "no price data"
	case MissingPriceAtStart:
		return "did not exist at start date"
	case MissingPriceAtEnd:
		return "no data at end date"
	case MissingAverageForPeriod:
		return "no price during the period"
	default:
		return string(r)
	}
}

// Exclusion is an item left out of a calculation.
type Exclusion struct {
	Item   string `json:"item"`
	Reason Reason `json:"reason"`
}

func (e Exclusion) String() string { return fmt.Sprintf("%s (%s)", e.Item, e.Reason.Describe()) }

// ExclusionError is returned when a single item cannot be resolved.
type ExclusionError struct{ Exclusion }

func (e *ExclusionError) Error() string {
	return fmt.Sprintf("item %q excluded: %s", e.Item, e.Reason)
}

// Contribution is an item that survived resolution and contributes to the index.
type Contribution struct {
	Item   string  `json:"item"`
	Weight float64 `json:"weight"`
	// Share is the weight renormalized over the contributing items.
	Share  float64 `json:"share"`
	Old    Quote   `json:"old"`
	New    Quote   `json:"new"`
	Change Percent `json:"change"`
}

// Result is the outcome of an index calculation.
type Result struct {
	From date.Range `json:"from"`
	To   date.Range `json:"to"`
	// Averaged is true when prices are period averages rather than as-of prices.
	Averaged bool `json:"averaged"`
	// Value is nil when the index is undefined, i.e. no item could be resolved.
	Value         *Percent       `json:"value"`
	Contributions []Contribution `json:"contributions"`
	Exclusions    []Exclusion    `json:"exclusions"`
}

// Index returns the index value, ok is false when it is undefined.
func (r *Result) Index() (value Percent, ok bool) {
	if r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

// Defined reports whether the index could be computed.
func (r *Result) Defined() bool { return r.Value != nil }
