package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/etnz/rpi/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the index API over HTTP" }
func (*serveCmd) Usage() string {
	return `rpi serve [-addr <host:port>]

  Serves the index, the history and the basket as a JSON API:

    GET  /health
    POST /api/v1/index
    GET  /api/v1/history
    GET  /api/v1/basket
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", fmt.Sprintf(":%d", getEnvInt("PORT", 8080)), "Address to listen on.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := loadBasket()
	if err != nil {
		return fail("Error loading basket", err)
	}
	calc, closer, err := newCalculator(ctx)
	if err != nil {
		return fail("Error opening price source", err)
	}
	defer closer()

	gin.SetMode(getEnv("GIN_MODE", gin.ReleaseMode))
	h := server.New(calc, b)
	h.Today = today

	srv := &http.Server{
		Addr:              c.addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	fmt.Fprintf(os.Stderr, "Listening on %s\n", c.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fail("Error serving", err)
	}
	return subcommands.ExitSuccess
}
