package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dcrodman/bfcrypt/internal/data"
	"github.com/dcrodman/bfcrypt/internal/debug"
	"github.com/dcrodman/bfcrypt/internal/keycache"
	"github.com/dcrodman/bfcrypt/internal/web"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the encrypt/decrypt HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.loadConfig()
			if err != nil {
				return err
			}

			db, err := data.Open(cfg)
			if err != nil {
				return errors.Wrap(err, "opening vault database")
			}
			defer func() {
				if err := data.Close(db); err != nil {
					logger.WithError(err).Warn("error closing database")
				}
			}()

			if cfg.Debugging.PprofEnabled {
				debug.StartPprofServer(logger, cfg.Debugging.PprofPort)
			}

			// Register a SIGTERM handler so that Ctrl-C will shut the server down gracefully.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := &web.Server{
				Config:  cfg,
				Logger:  logger,
				Ciphers: keycache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval, logger),
				DB:      db,
			}
			return server.Start(ctx)
		},
	}
}
