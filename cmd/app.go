// Package cmd implements the CLI application to compute price indexes.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"github.com/etnz/rpi/httpcache"
	"github.com/etnz/rpi/jagex"
	"github.com/etnz/rpi/store"
	"github.com/etnz/rpi/wiki"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&computeCmd{}, "index")
	c.Register(&averageCmd{}, "index")
	c.Register(&itemCmd{}, "index")
	c.Register(&historyCmd{}, "index")

	c.Register(&basketCmd{}, "items")
	c.Register(&searchCmd{}, "items")
	c.Register(&fetchCmd{}, "items")

	c.Register(&serveCmd{}, "server")
	c.Register(&assistCmd{}, "")
	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// EnvPrefix prefixes the environment variables overriding flag defaults.
const EnvPrefix = "RPI_"

var (
	basketFile  = flag.String("basket", "", "Path to a basket JSON file, the reference basket if empty")
	source      = flag.String("source", "jagex", "Price source: jagex, db or file")
	pricesFile  = flag.String("prices", "prices.json", "Path to the prices JSON file of the file source")
	databaseURL = flag.String("database-url", "", "MySQL DSN of the db source")
	workers     = flag.Int("workers", 8, "Number of items resolved concurrently")
	userAgent   = flag.String("user-agent", wiki.BrowserUserAgent, "User-Agent sent to the price APIs")
	cacheDir    = flag.String("cache-dir", "", "Folder of cached API responses, the temp dir if empty")
	fillDaily   = flag.Bool("fill", false, "Forward fill the missing days of fetched prices")
	todayFlag   = flag.String("today", "", "Reference day, the current day if empty")

	// Verbose enables the log output of the price sources.
	Verbose = flag.Bool("v", false, "Verbose logging")
)

// SetDefaultsFromEnv overrides the default value of every flag of fs that has a
// matching environment variable: -database-url reads RPI_DATABASE_URL.
// It must be called before fs is parsed.
func SetDefaultsFromEnv(fs *flag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		val := getEnv(envName(f.Name), "")
		if val == "" || err != nil {
			return
		}
		if serr := f.Value.Set(val); serr != nil {
			err = fmt.Errorf("invalid %s=%q: %w", envName(f.Name), val, serr)
			return
		}
		f.DefValue = val
	})
	return err
}

func envName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

// today returns the reference day of the application.
func today() date.Date {
	if *todayFlag == "" {
		return date.Today()
	}
	d, err := date.Parse(*todayFlag)
	if err != nil {
		log.Printf("ignoring invalid -today: %v", err)
		return date.Today()
	}
	return d
}

// loadBasket returns the basket of the -basket file, or the reference basket.
func loadBasket() (rpi.Basket, error) {
	if *basketFile == "" {
		return rpi.DefaultBasket, nil
	}
	f, err := os.Open(*basketFile)
	if err != nil {
		return rpi.Basket{}, err
	}
	defer f.Close()
	return rpi.DecodeBasket(f)
}

// loadMarket decodes the prices file of the file source.
func loadMarket() (*rpi.Market, error) {
	f, err := os.Open(*pricesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rpi.DecodeMarket(f)
}

// httpClient returns the cached client used by every API call.
func httpClient() *httpcache.Transport {
	return &httpcache.Transport{Dir: *cacheDir, Period: date.Daily, UserAgent: *userAgent}
}

// newCatalog returns the catalog of the wiki mapping.
func newCatalog(ctx context.Context) (*rpi.Catalog, error) {
	return wiki.New(*userAgent, httpClient()).Catalog(ctx)
}

// newJagex returns a resolver of the Grand Exchange graph API.
func newJagex() *jagex.Resolver {
	r := jagex.NewResolver(&http.Client{Transport: httpClient()})
	r.FillDaily = *fillDaily
	return r
}

// newCalculator returns the calculator of the selected source and a function to
// release its resources.
func newCalculator(ctx context.Context) (*rpi.Calculator, func(), error) {
	calc := &rpi.Calculator{Workers: *workers}
	switch *source {
	case "file":
		m, err := loadMarket()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot load prices: %w", err)
		}
		calc.Catalog, calc.Prices = m, m
		return calc, func() {}, nil

	case "jagex":
		catalog, err := newCatalog(ctx)
		if err != nil {
			return nil, nil, err
		}
		calc.Catalog, calc.Prices = catalog, newJagex()
		return calc, func() {}, nil

	case "db":
		catalog, err := newCatalog(ctx)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.Open(*databaseURL)
		if err != nil {
			return nil, nil, err
		}
		calc.Catalog, calc.Prices = catalog, s
		return calc, func() {
			if err := s.Close(); err != nil {
				log.Printf("closing the database: %v", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown source %q, want jagex, db or file", *source)
	}
}

// parseDay parses a date flag, def if empty.
func parseDay(s string, def date.Date) (date.Date, error) {
	if s == "" {
		return def, nil
	}
	return date.Parse(s)
}

// fail prints err and returns the failure status.
func fail(format string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+": %v\n", err)
	return subcommands.ExitFailure
}
