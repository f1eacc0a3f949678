package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/google/subcommands"
)

type basketCmd struct{}

func (*basketCmd) Name() string     { return "basket" }
func (*basketCmd) Synopsis() string { return "print the basket" }
func (*basketCmd) Usage() string {
	return `rpi basket

  Prints the basket in use, as JSON. It is the reference basket unless -basket
  is set, and can be edited and passed back with -basket.
`
}

func (c *basketCmd) SetFlags(f *flag.FlagSet) {}

func (c *basketCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := loadBasket()
	if err != nil {
		return fail("Error loading basket", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fail("Error encoding basket", err)
	}
	return subcommands.ExitSuccess
}
