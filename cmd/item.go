package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/renderer"
	"github.com/google/subcommands"
)

// itemCmd holds the flags for the 'item' subcommand.
type itemCmd struct {
	from, to string
}

func (*itemCmd) Name() string     { return "item" }
func (*itemCmd) Synopsis() string { return "compute the price change of a single item" }
func (*itemCmd) Usage() string {
	return `rpi item [-from <date>] [-to <date>] <name>

  Computes the price change of the named item between the prices at -from and at -to.
`
}

func (c *itemCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Start day, one year before -to if empty.")
	f.StringVar(&c.to, "to", "", "End day, today if empty.")
}

func (c *itemCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: an item name is required")
		return subcommands.ExitUsageError
	}
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

	calc, closer, err := newCalculator(ctx)
	if err != nil {
		return fail("Error opening price source", err)
	}
	defer closer()

	contribution, err := calc.Item(ctx, name, from, to)
	var excluded *rpi.ExclusionError
	if errors.As(err, &excluded) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", excluded.Item, excluded.Reason.Describe())
		return subcommands.ExitFailure
	}
	if err != nil {
		return fail("Error computing price change", err)
	}
	printMarkdown(renderer.RenderItem(name, contribution))
	return subcommands.ExitSuccess
}
