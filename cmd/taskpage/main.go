package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/taskpage/internal/api"
	"github.com/idilsaglam/taskpage/internal/cli"
	"github.com/idilsaglam/taskpage/internal/config"
	"github.com/idilsaglam/taskpage/internal/logging"
	"github.com/idilsaglam/taskpage/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("taskpage", flag.ContinueOnError)
	groupPending := fs.Bool("group", false, "group output by pending/done")
	yes := fs.Bool("yes", false, "do not ask before removing a task")

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		ui.Fail(os.Stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	logger, closer, err := logging.NewFile(cfg.LogFile, logging.Options{Level: cfg.Level()})
	if err != nil {
		ui.Fail(os.Stderr, "log: "+err.Error())
		return 1
	}
	defer closer.Close()
	logger.Info("starting", "base_url", cfg.BaseURL, "timeout", cfg.Timeout.Duration, "config", cfg.File)

	client := api.New(api.Options{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout.Duration,
		Logger:      logger.WithPrefix("api"),
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout.Duration,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand the remaining args to the CLI runner.
	runner := &cli.Runner{
		Service: client,
		Logger:  logger,
		Options: cli.Options{Group: *groupPending, Yes: *yes},
	}
	code := runner.Run(ctx, fs.Args())
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
