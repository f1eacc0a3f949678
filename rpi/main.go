// Command rpi computes price indexes of Grand Exchange items.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/rpi/cmd"
	"github.com/etnz/rpi/docs"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// a missing .env file is fine, the environment is used as is.
	_ = godotenv.Load()
	if err := cmd.SetDefaultsFromEnv(flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading environment:", err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	completion().Complete("rpi")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

func registered(commander *subcommands.Commander, name string) (found bool) {
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	window := map[string]complete.Predictor{
		"from": predict.Something,
		"to":   predict.Something,
		"json": predict.Nothing,
	}
	topics, _ := docs.GetAllTopics()

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"basket":       predict.Files("*.json"),
			"source":       predict.Set{"jagex", "db", "file"},
			"prices":       predict.Files("*.json"),
			"database-url": predict.Something,
			"workers":      predict.Something,
			"user-agent":   predict.Something,
			"cache-dir":    predict.Dirs("*"),
			"fill":         predict.Nothing,
			"today":        predict.Something,
			"v":            predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"compute": {Flags: window},
			"average": {Flags: map[string]complete.Predictor{
				"from":   predict.Something,
				"to":     predict.Something,
				"period": predict.Set{"day", "week", "month", "quarter", "year"},
				"json":   predict.Nothing,
			}},
			"item": {Flags: window, Args: predict.Something},
			"history": {Flags: map[string]complete.Predictor{
				"granularity": predict.Set{"point", "average"},
				"limit":       predict.Something,
				"xlsx":        predict.Files("*.xlsx"),
				"json":        predict.Nothing,
			}},
			"basket": {},
			"search": {Args: predict.Something},
			"fetch":  {Args: predict.Something},
			"serve":  {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"assist": {Args: predict.Something},
			"topic":  {Flags: map[string]complete.Predictor{"list": predict.Nothing}, Args: predict.Set(topics)},
			"help":   {},
		},
	}
}
