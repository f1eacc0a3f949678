package rpi

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/rpi/date"
)

func TestCollectHistoryStopsAtFirstGap(t *testing.T) {
	// Monthly prices since April 2024: year over year comparisons resolve from
	// April 2025 to September 2025 only.
	points := make(map[string]float64)
	for i := range 18 {
		points[date.New(2024, 4, 1).AddMonth(i).String()] = float64(100 + i)
	}
	c := market(map[string]map[string]float64{"X": points})

	got, err := c.CollectHistory(context.Background(), NewBasket(Entry{"X", 1}), HistoryOptions{Today: day("2025-10-15")})
	if err != nil {
		t.Fatalf("CollectHistory() unexpected error: %v", err)
	}
	want := []date.Date{
		day("2025-04-30"),
		day("2025-05-31"),
		day("2025-06-30"),
		day("2025-07-31"),
		day("2025-08-31"),
		day("2025-09-30"),
	}
	if len(got) != len(want) {
		t.Fatalf("CollectHistory() got %d points want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Date != want[i] {
			t.Errorf("CollectHistory()[%d].Date = %v want %v", i, p.Date, want[i])
		}
		if p.Result == nil || p.Result.To.To != p.Date {
			t.Errorf("CollectHistory()[%d].Result does not end on %v", i, p.Date)
		}
	}
	// September 2025 (117) against September 2024 (105).
	if last := got[len(got)-1]; !last.Index.Equal(Percent(100 * 12.0 / 105.0)) {
		t.Errorf("CollectHistory() last index = %v want %v", last.Index, Percent(100*12.0/105.0))
	}
}

func TestHistoryLeapDay(t *testing.T) {
	c := market(map[string]map[string]float64{"X": {
		"2023-02-28": 100,
		"2023-03-01": 50,
		"2024-02-29": 110,
	}})
	got, err := c.CollectHistory(context.Background(), NewBasket(Entry{"X", 1}), HistoryOptions{Today: day("2024-03-10"), Limit: 1})
	if err != nil {
		t.Fatalf("CollectHistory() unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("CollectHistory() got %d points want 1", len(got))
	}
	p := got[0]
	if p.Date != day("2024-02-29") || p.Result.From.From != day("2023-02-28") {
		t.Errorf("CollectHistory() compared %v to %v want 2024-02-29 to 2023-02-28", p.Date, p.Result.From.From)
	}
	if !p.Index.Equal(10) {
		t.Errorf("CollectHistory() index = %v want 10.00%%", p.Index)
	}
}

func TestHistoryLimit(t *testing.T) {
	c := market(map[string]map[string]float64{"X": {"1990-01-01": 100}})
	b := NewBasket(Entry{"X", 1})
	today := day("2025-10-15")

	testCases := []struct {
		limit     int
		wantLen   int
		wantFirst date.Date
	}{
		{0, MaxHistory, day("2005-10-31")},
		{1000, MaxHistory, day("2005-10-31")},
		{12, 12, day("2024-10-31")},
		{1, 1, day("2025-09-30")},
	}
	for _, tc := range testCases {
		got, err := c.CollectHistory(context.Background(), b, HistoryOptions{Today: today, Limit: tc.limit})
		if err != nil {
			t.Fatalf("CollectHistory(limit=%d) unexpected error: %v", tc.limit, err)
		}
		if len(got) != tc.wantLen {
			t.Errorf("CollectHistory(limit=%d) got %d points want %d", tc.limit, len(got), tc.wantLen)
			continue
		}
		if got[0].Date != tc.wantFirst {
			t.Errorf("CollectHistory(limit=%d) first point on %v want %v", tc.limit, got[0].Date, tc.wantFirst)
		}
	}
}

func TestHistoryIsMostRecentFirst(t *testing.T) {
	c := market(map[string]map[string]float64{"X": {"1990-01-01": 100}})
	var got []date.Date
	for p, err := range c.History(context.Background(), NewBasket(Entry{"X", 1}), HistoryOptions{Today: day("2025-03-02")}) {
		if err != nil {
			t.Fatalf("History() unexpected error: %v", err)
		}
		got = append(got, p.Date)
		if len(got) == 3 {
			break
		}
	}
	want := []date.Date{day("2025-02-28"), day("2025-01-31"), day("2024-12-31")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("History()[%d] = %v want %v", i, got[i], want[i])
		}
	}
}

func TestHistoryMonthlyAverage(t *testing.T) {
	c := market(map[string]map[string]float64{"X": {
		"2024-09-10": 100,
		"2024-09-20": 200,
		"2025-09-05": 300,
	}})
	got, err := c.CollectHistory(context.Background(), NewBasket(Entry{"X", 1}), HistoryOptions{
		Granularity: MonthlyAverage,
		Today:       day("2025-10-15"),
	})
	if err != nil {
		t.Fatalf("CollectHistory() unexpected error: %v", err)
	}
	// August 2025 has no observation, the walk stops after September.
	if len(got) != 1 {
		t.Fatalf("CollectHistory() got %d points want 1", len(got))
	}
	p := got[0]
	if !p.Result.Averaged || p.Result.From != date.NewRange(day("2024-09-01"), date.Monthly) {
		t.Errorf("CollectHistory() result from %v (averaged %v) want September 2024 averages", p.Result.From, p.Result.Averaged)
	}
	if !p.Index.Equal(100) {
		t.Errorf("CollectHistory() index = %v want 100.00%%", p.Index)
	}
}

func TestHistoryErrors(t *testing.T) {
	c := market(map[string]map[string]float64{"X": {"1990-01-01": 100}})

	if _, err := c.CollectHistory(context.Background(), NewBasket(), HistoryOptions{}); !errors.Is(err, ErrEmptyBasket) {
		t.Errorf("CollectHistory(empty) error = %v want %v", err, ErrEmptyBasket)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := c.CollectHistory(ctx, NewBasket(Entry{"X", 1}), HistoryOptions{})
	if !errors.Is(err, context.Canceled) || got != nil {
		t.Errorf("CollectHistory(cancelled) = %v, %v want no points and context.Canceled", got, err)
	}
}

func TestParseGranularity(t *testing.T) {
	for _, g := range []Granularity{PointInTime, MonthlyAverage} {
		got, err := ParseGranularity(g.String())
		if err != nil || got != g {
			t.Errorf("ParseGranularity(%q) = %v, %v want %v", g.String(), got, err, g)
		}
	}
	if _, err := ParseGranularity("weekly"); err == nil {
		t.Errorf("ParseGranularity(\"weekly\") want an error")
	}
}
