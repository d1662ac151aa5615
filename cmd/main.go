package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/repositories"
	"github.com/desertthunder/correx/internal/shared"
)

// configPathEnv overrides the config file location.
const configPathEnv = "CORREX_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	if level, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, level)
	}

	var store query.Store
	if config.Cache.Persist {
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			logger.Warn("snapshot store unavailable, caching in memory only", "error", err)
		} else {
			defer db.Close()
			store = repositories.NewSnapshotStore(repositories.NewSnapshotRepository(db))
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
		Store:      store,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "correx",
		Usage:    "Review wiki corrections and their diffs from the terminal",
		Version:  "0.3.0",
		Flags:    []cli.Flag{logLevelFlag()},
		Before:   runner.applyLogLevel,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		logger.Error("application error", "error", err)
		runner.Close()
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes usage errors (2) from everything else (1).
func exitCode(err error) int {
	for _, usage := range []error{shared.ErrValidation, shared.ErrInvalidArgument, shared.ErrMissingArgument, shared.ErrInvalidFlag} {
		if errors.Is(err, usage) {
			return 2
		}
	}
	return 1
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error); overrides log.level",
	}
}

func (r *Runner) applyLogLevel(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	raw := cmd.String("log-level")
	if raw == "" {
		return ctx, nil
	}
	level, err := shared.ParseLogLevel(raw)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)
	return log.WithContext(ctx, r.logger), nil
}
