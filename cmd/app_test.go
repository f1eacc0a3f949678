package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
)

func TestSetDefaultsFromEnv(t *testing.T) {
	t.Setenv("RPI_DATABASE_URL", "user:pass@tcp(localhost:3306)/rpi")
	t.Setenv("RPI_WORKERS", "3")

	fs := flag.NewFlagSet("rpi", flag.ContinueOnError)
	dsn := fs.String("database-url", "", "")
	n := fs.Int("workers", 8, "")
	src := fs.String("source", "jagex", "")

	if err := SetDefaultsFromEnv(fs); err != nil {
		t.Fatalf("SetDefaultsFromEnv() unexpected error: %v", err)
	}
	if err := fs.Parse([]string{"-source", "file"}); err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if *dsn != "user:pass@tcp(localhost:3306)/rpi" || *n != 3 {
		t.Errorf("defaults = %q, %d want the environment values", *dsn, *n)
	}
	if *src != "file" {
		t.Errorf("-source = %q want the command line to win over defaults", *src)
	}
}

func TestSetDefaultsFromEnvInvalid(t *testing.T) {
	t.Setenv("RPI_WORKERS", "many")
	fs := flag.NewFlagSet("rpi", flag.ContinueOnError)
	fs.Int("workers", 8, "")
	if err := SetDefaultsFromEnv(fs); err == nil {
		t.Errorf("SetDefaultsFromEnv() want an error for RPI_WORKERS=many")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("RPI_TEST_PORT", "9090")
	if got := getEnvInt("RPI_TEST_PORT", 8080); got != 9090 {
		t.Errorf("getEnvInt() = %d want 9090", got)
	}
	t.Setenv("RPI_TEST_PORT", "http")
	if got := getEnvInt("RPI_TEST_PORT", 8080); got != 8080 {
		t.Errorf("getEnvInt(invalid) = %d want the fallback 8080", got)
	}
}

// setFlag sets a global flag for the duration of the test.
func setFlag[T any](t *testing.T, p *T, value T) {
	old := *p
	*p = value
	t.Cleanup(func() { *p = old })
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	prices := filepath.Join(dir, "prices.json")
	basket := filepath.Join(dir, "basket.json")
	os.WriteFile(prices, []byte(`{"Shark": {"2025-01-01": 1000, "2025-06-01": 1100}}`), 0644)
	os.WriteFile(basket, []byte(`{"shark": 1, "Coal": 1}`), 0644)

	setFlag(t, source, "file")
	setFlag(t, pricesFile, prices)
	setFlag(t, basketFile, basket)
	setFlag(t, todayFlag, "2025-06-01")

	b, err := loadBasket()
	if err != nil {
		t.Fatalf("loadBasket() unexpected error: %v", err)
	}
	calc, closer, err := newCalculator(context.Background())
	if err != nil {
		t.Fatalf("newCalculator() unexpected error: %v", err)
	}
	defer closer()

	if got := today(); got != date.New(2025, 6, 1) {
		t.Errorf("today() = %v want 2025-06-01", got)
	}
	res, err := calc.Compute(context.Background(), b, date.New(2025, 1, 1), today())
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	if v, ok := res.Index(); !ok || !v.Equal(10) {
		t.Errorf("Compute() = %v want +10.00%%", res.Value)
	}
	if len(res.Exclusions) != 1 || res.Exclusions[0].Reason != rpi.UnknownItem {
		t.Errorf("Compute() exclusions = %v want Coal unknown", res.Exclusions)
	}
}

func TestUnknownSource(t *testing.T) {
	setFlag(t, source, "carrier-pigeon")
	if _, _, err := newCalculator(context.Background()); err == nil {
		t.Errorf("newCalculator() want an error for an unknown source")
	}
}
