package date

import (
	"fmt"
	"strings"
)

// Period is a well known calendar period.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames holds the adjective and the noun naming each period.
var periodNames = [...][2]string{
	Daily:     {"daily", "day"},
	Weekly:    {"weekly", "week"},
	Monthly:   {"monthly", "month"},
	Quarterly: {"quarterly", "quarter"},
	Yearly:    {"yearly", "year"},
}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		return fmt.Sprintf("period(%d)", int(p))
	}
	return periodNames[p][0]
}

// ParsePeriod parses a period name, either the adjective ("monthly") or the noun ("month").
func ParsePeriod(p string) (Period, error) {
	name := strings.ToLower(strings.TrimSpace(p))
	for i, names := range periodNames {
		if name == names[0] || name == names[1] {
			return Period(i), nil
		}
	}
	return Daily, fmt.Errorf("unknown period %q", p)
}

// Set implements flag.Value.
func (p *Period) Set(s string) error {
	v, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error { return p.Set(string(text)) }

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
