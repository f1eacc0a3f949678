package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/jagex"
	"github.com/etnz/rpi/store"
	"github.com/google/subcommands"
)

type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download item prices for offline use" }
func (*fetchCmd) Usage() string {
	return `rpi fetch [<name>...]

  Downloads the daily prices of the named items, or of every basket item, from
  the Grand Exchange graph API.

  Prices are saved in the database when -database-url is set, otherwise they are
  merged into the -prices file, ready for -source file.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := f.Args()
	if len(names) == 0 {
		b, err := loadBasket()
		if err != nil {
			return fail("Error loading basket", err)
		}
		for _, e := range b.Entries() {
			names = append(names, e.Name)
		}
	}

	catalog, err := newCatalog(ctx)
	if err != nil {
		return fail("Error loading catalog", err)
	}
	prices := newJagex()

	fetched := make(map[string]*rpi.PriceSeries)
	ids := make(map[string]rpi.ItemID)
	for _, name := range names {
		id, ok := catalog.Lookup(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Skipping %q: %s\n", name, rpi.UnknownItem.Describe())
			continue
		}
		s, err := prices.Fetch(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %q: %v\n", name, err)
			continue
		}
		if *fillDaily {
			s = jagex.FillDaily(s)
		}
		fetched[name], ids[name] = s, id
	}

	if *databaseURL != "" {
		return saveToDatabase(ctx, fetched, ids)
	}
	return saveToFile(fetched, names)
}

func saveToDatabase(ctx context.Context, fetched map[string]*rpi.PriceSeries, ids map[string]rpi.ItemID) subcommands.ExitStatus {
	s, err := store.Open(*databaseURL)
	if err != nil {
		return fail("Error opening database", err)
	}
	defer s.Close()

	for name, series := range fetched {
		n, err := s.Save(ctx, ids[name], series)
		if err != nil {
			return fail("Error saving prices", err)
		}
		fmt.Printf("%s: %d prices saved\n", name, n)
	}
	return subcommands.ExitSuccess
}

func saveToFile(fetched map[string]*rpi.PriceSeries, names []string) subcommands.ExitStatus {
	m, err := loadMarket()
	if errors.Is(err, fs.ErrNotExist) {
		m, err = new(rpi.Market), nil
	}
	if err != nil {
		return fail("Error loading prices", err)
	}
	for _, name := range names {
		if s, ok := fetched[name]; ok {
			m.Add(name, s)
			fmt.Printf("%s: %d prices fetched\n", name, s.Len())
		}
	}

	f, err := os.Create(*pricesFile)
	if err != nil {
		return fail("Error writing prices", err)
	}
	if err := rpi.EncodeMarket(f, m); err != nil {
		f.Close()
		return fail("Error writing prices", err)
	}
	if err := f.Close(); err != nil {
		return fail("Error writing prices", err)
	}
	return subcommands.ExitSuccess
}
