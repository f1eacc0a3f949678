package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/renderer"
	"github.com/google/subcommands"
)

// historyCmd holds the flags for the 'history' subcommand.
type historyCmd struct {
	granularity string
	limit       int
	xlsx        string
	json        bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "compute the monthly year over year index" }
func (*historyCmd) Usage() string {
	return `rpi history [-granularity point|average] [-limit <n>] [-xlsx <file>] [-json]

  Computes the year over year index of the basket at the end of every month,
  walking back from the last completed month until an index is undefined.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.granularity, "granularity", "point", "Compare the prices at month ends (point) or the monthly averages (average).")
	f.IntVar(&c.limit, "limit", 12, fmt.Sprintf("Maximum number of months, at most %d.", rpi.MaxHistory))
	f.StringVar(&c.xlsx, "xlsx", "", "Also write the history to this Excel file.")
	f.BoolVar(&c.json, "json", false, "Print the points as JSON.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, err := rpi.ParseGranularity(c.granularity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -granularity: %v\n", err)
		return subcommands.ExitUsageError
	}
	b, err := loadBasket()
	if err != nil {
		return fail("Error loading basket", err)
	}
	calc, closer, err := newCalculator(ctx)
	if err != nil {
		return fail("Error opening price source", err)
	}
	defer closer()

	points, err := calc.CollectHistory(ctx, b, rpi.HistoryOptions{Granularity: g, Limit: c.limit, Today: today()})
	if err != nil {
		return fail("Error computing history", err)
	}

	if c.xlsx != "" {
		if err := writeXLSX(c.xlsx, points); err != nil {
			return fail("Error writing "+c.xlsx, err)
		}
	}

	if c.json {
		if points == nil {
			points = []rpi.Point{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(points); err != nil {
			return fail("Error encoding history", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.HistoryMarkdown(points, g))
	return subcommands.ExitSuccess
}

func writeXLSX(name string, points []rpi.Point) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := renderer.WriteHistoryXLSX(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
