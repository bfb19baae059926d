package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskpage/internal/devserver"
	"github.com/idilsaglam/taskpage/internal/logging"
	"github.com/idilsaglam/taskpage/internal/store/jsonstore"
	"github.com/idilsaglam/taskpage/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// run returns an exit code (0 ok, 1 error, 2 usage).
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("taskpage-devserver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "127.0.0.1:8000", "listen address")
	data := fs.String("data", jsonstore.DefaultFileName, "JSON file holding the tasks (empty keeps them in memory)")
	level := fs.String("log-level", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		ui.Fail(stderr, fmt.Sprintf("invalid log level %q: %v", *level, err))
		return 2
	}
	logger := logging.NewConsole(stderr, logging.Options{Level: lvl, Prefix: "devserver"})

	var store *jsonstore.Store
	if *data != "" {
		store = jsonstore.New(*data)
	}
	srv, err := devserver.New(devserver.Options{Store: store, Logger: logger})
	if err != nil {
		logger.Error("load tasks", "err", err)
		return 1
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("listening", "addr", *addr, "tasks", len(srv.Tasks()))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "err", err)
		return 1
	}
	logger.Info("stopped")
	return 0
}
