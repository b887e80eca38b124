package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/server"
	"github.com/goliatone/go-formbuilder/pkg/theme"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve shared forms over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, err := theme.NewSelector()
			if err != nil {
				return err
			}
			options := []server.Option{
				server.WithLogger(a.log),
				server.WithTheme(a.repo, selector),
				server.WithValidator(validation.New(
					validation.WithPatternPolicy(a.cfg.PatternPolicy()),
					validation.WithLogger(a.log),
				)),
			}
			if pinger, ok := a.adapter.(interface{ Ping(context.Context) error }); ok {
				options = append(options, server.WithHealthCheck(pinger.Ping))
			}
			srv, err := server.New(a.repo, options...)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, server.ServeConfig{
				Addr:            addr,
				ReadTimeout:     time.Duration(a.cfg.Server.ReadTimeoutSec) * time.Second,
				WriteTimeout:    time.Duration(a.cfg.Server.WriteTimeoutSec) * time.Second,
				ShutdownTimeout: time.Duration(a.cfg.Server.ShutdownSec) * time.Second,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
