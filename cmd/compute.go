package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"github.com/etnz/rpi/renderer"
	"github.com/google/subcommands"
)

// computeCmd holds the flags for the 'compute' subcommand.
type computeCmd struct {
	from, to string
	json     bool
}

func (*computeCmd) Name() string     { return "compute" }
func (*computeCmd) Synopsis() string { return "compute the basket index between two days" }
func (*computeCmd) Usage() string {
	return `rpi compute [-from <date>] [-to <date>] [-json]

  Computes the weighted price change of the basket between the prices at -from
  and the prices at -to. Items without prices are excluded and reported.
`
}

func (c *computeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Start day, one year before -to if empty.")
	f.StringVar(&c.to, "to", "", "End day, today if empty.")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON.")
}

func (c *computeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := parseDay(c.to, today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	from, err := parseDay(c.from, to.YearBefore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
		return subcommands.ExitUsageError
	}

	return run(ctx, c.json, func(calc *rpi.Calculator, b rpi.Basket) (*rpi.Result, error) {
		return calc.Compute(ctx, b, from, to)
	})
}

// averageCmd holds the flags for the 'average' subcommand.
type averageCmd struct {
	from, to string
	period   date.Period
	json     bool
}

func (*averageCmd) Name() string     { return "average" }
func (*averageCmd) Synopsis() string { return "compute the basket index between two period averages" }
func (*averageCmd) Usage() string {
	return `rpi average [-from <date>] [-to <date>] [-period month] [-json]

  Computes the weighted change of the basket between the mean prices over the
  period containing -from and the mean prices over the period containing -to.
`
}

func (c *averageCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "A day of the start period, one year before -to if empty.")
	f.StringVar(&c.to, "to", "", "A day of the end period, the last completed month if empty.")
	c.period = date.Monthly
	f.Var(&c.period, "period", "Period to average over: day, week, month, quarter or year.")
	f.BoolVar(&c.json, "json", false, "Print the result as JSON.")
}

func (c *averageCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := parseDay(c.to, today().LastCompletedMonth())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -to: %v\n", err)
		return subcommands.ExitUsageError
	}
	from, err := parseDay(c.from, to.YearBefore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
		return subcommands.ExitUsageError
	}

	return run(ctx, c.json, func(calc *rpi.Calculator, b rpi.Basket) (*rpi.Result, error) {
		return calc.ComputeAverage(ctx, b, date.NewRange(from, c.period), date.NewRange(to, c.period))
	})
}

// run computes a result with the application calculator and basket, and prints it.
func run(ctx context.Context, asJSON bool, compute func(*rpi.Calculator, rpi.Basket) (*rpi.Result, error)) subcommands.ExitStatus {
	b, err := loadBasket()
	if err != nil {
		return fail("Error loading basket", err)
	}
	calc, closer, err := newCalculator(ctx)
	if err != nil {
		return fail("Error opening price source", err)
	}
	defer closer()

	res, err := compute(calc, b)
	if err != nil {
		return fail("Error computing index", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fail("Error encoding result", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderResult(res))
	return subcommands.ExitSuccess
}
