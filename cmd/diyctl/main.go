package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"diyclient/internal/cli"
	"diyclient/internal/config"
	"diyclient/internal/gateway"
	"diyclient/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeStore, err := session.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Error("session storage init", "backend", cfg.SessionBackend, "error", err)
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close session storage", "error", err)
		}
	}()

	term := cli.NewTerminal(os.Stdin, os.Stdout)
	sessions := session.NewManager(store, term, logger)
	api := gateway.New(gateway.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	}, sessions)

	app := cli.New(api, sessions, term, os.Stdout, logger)
	return exitCode(app.Run(ctx, os.Args[1:]), os.Stderr)
}

// exitCode maps a command error to the process status. Usage errors are
// already reported by the app on its own output.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}
