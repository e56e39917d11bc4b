package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/api"
	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/config"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the vault over a local HTTP API",
		Long: `Starts the HTTP API. Pastes are posted as forms to /api/paste, items are
listed and removed under /api/items, and /api/events streams every change over
a websocket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				opts.cfg.Serve.Listen = listen
				if err := config.Validate(opts.cfg); err != nil {
					return clierr.Wrap(clierr.ExitCodeValidation, "invalid --listen", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if err := a.follow(ctx); err != nil {
				return clierr.Wrap(clierr.ExitCodeStorage, "failed to watch storage", err)
			}

			if zerolog.GlobalLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := api.NewServer(ctx, api.Deps{
				Store:    a.store,
				Query:    a.query,
				Capture:  a.capture,
				Search:   a.search,
				Notifier: a.notifier,
			}, a.log)

			httpSrv := &http.Server{
				Addr:              opts.cfg.Serve.Listen,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				errc <- httpSrv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s (Ctrl+C to exit)\n", opts.cfg.Serve.Listen)

			select {
			case err := <-errc:
				return clierr.Wrap(clierr.ExitCodeGeneral, "server stopped", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return clierr.Wrap(clierr.ExitCodeGeneral, "shutdown failed", err)
			}
			a.log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config, 127.0.0.1:7312)")
	return cmd
}
