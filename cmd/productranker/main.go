package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ProductRanker/internal/app"
	"ProductRanker/internal/config"
	"ProductRanker/internal/logging"
)

func main() {
	download := flag.Bool("download", false,
		"download the review files for the configured categories and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *download {
		if err := application.Download(ctx); err != nil {
			logger.Error("download failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
