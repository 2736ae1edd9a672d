package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/amjp/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// loadStartupConfig reads path when it exists. A file that fails to load yields the defaults plus the error, which
// commands reading that path then report.
func loadStartupConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); err != nil {
		return shared.DefaultConfig(), nil
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		return shared.DefaultConfig(), err
	}
	return config, nil
}

func main() {
	logger := shared.NewLogger(nil)

	config, configErr := loadStartupConfig(defaultConfigPath)
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		ConfigErr:  configErr,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "amjp",
		Usage:    "Rewrite Apple Music track metadata with Japanese storefront titles",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			runner.logger.Warn("not implemented")
			os.Exit(0)
		} else {
			runner.logger.Fatalf("application error: %v", err)
		}
	}
}
