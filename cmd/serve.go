package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/server"
	"github.com/desertthunder/correx/internal/shared"
)

// Serve exposes correction pages as JSON over HTTP until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, cfg.Port)
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewRouter(r.engine, server.RouterOpts{
		Logger:      logger,
		SlowRequest: cmd.Duration("slow"),
	})
	srv := server.NewServer(cfg.Addr(), router, logger)
	logger.Debug("routes registered", "patterns", router.Patterns())

	r.writePlain("Serving corrections on http://%s\n", srv.Addr())
	return srv.Run(ctx)
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Host to bind; overrides server.host",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on; overrides server.port",
		},
		&cli.DurationFlag{
			Name:  "slow",
			Usage: "Log requests slower than this at warn level",
			Value: 2 * time.Second,
		},
	}
}
