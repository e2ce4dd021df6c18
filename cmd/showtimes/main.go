package main

import (
	"context"
	"os"

	"github.com/jakobng/showtimes/internal/app"
	"github.com/jakobng/showtimes/internal/config"
	"github.com/jakobng/showtimes/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}
