package main

import (
	"context"
	"errors"
	"os"

	"github.com/backline/backline/internal/services"
	"github.com/backline/backline/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	registry := services.NewRegistry(config, nil)

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Platforms: registry,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "backline",
		Usage:    "Label portal service: streaming platform connections, analytics sync & notifications",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
