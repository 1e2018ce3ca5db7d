// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/vio_computer/internal/app"
	"github.com/relabs-tech/vio_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "vio_config.txt", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger, err := app.NewLogger(*debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting VIO module")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalw("failed to load config", "path", *configPath, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunVIO(ctx, cfg, logger); err != nil {
		logger.Fatalw("fatal", "error", err)
	}
}
