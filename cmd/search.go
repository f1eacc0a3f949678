package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/rpi"
	"github.com/google/subcommands"
)

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search items by name" }
func (*searchCmd) Usage() string {
	return `rpi search <text>

  Lists the items of the catalog whose name contains text, case insensitively.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text := strings.Join(f.Args(), " ")
	if text == "" {
		fmt.Fprintln(os.Stderr, "Error: a search text is required")
		return subcommands.ExitUsageError
	}

	var catalog *rpi.Catalog
	if *source == "file" {
		m, err := loadMarket()
		if err != nil {
			return fail("Error loading prices", err)
		}
		catalog = &m.Catalog
	} else {
		var err error
		if catalog, err = newCatalog(ctx); err != nil {
			return fail("Error loading catalog", err)
		}
	}

	for _, name := range catalog.Search(text) {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}
