package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/adapter/clipboard"
	"github.com/its-jojoo/ottervault/internal/clierr"
)

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Capture the system clipboard until interrupted",
		Long: `Polls the system clipboard and pastes every new text into the vault.
Text already on the clipboard at start is not captured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			w := clipboard.NewSystemWatcher(opts.cfg.WatchInterval())
			return runWatch(ctx, cmd, a, w)
		},
	}
}

func runWatch(ctx context.Context, cmd *cobra.Command, a *app, w clipboard.Watcher) error {
	events, err := w.Watch(ctx)
	if errors.Is(err, clipboard.ErrUnsupported) {
		return clierr.Wrap(clierr.ExitCodeUnsupported, "cannot read the system clipboard", err).
			WithSuggestion("Install xclip, xsel or wl-clipboard")
	}
	if err != nil {
		return clierr.Wrap(clierr.ExitCodeGeneral, "failed to watch clipboard", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "watching clipboard... (Ctrl+C to exit)")
	for range events {
		ev, err := w.Read()
		if err != nil {
			a.log.Debug().Err(err).Msg("clipboard read failed")
			continue
		}
		item, err := a.capture.Paste(ctx, ev).Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintln(out, "capture error:", err)
			continue
		}
		if item != nil {
			fmt.Fprintf(out, "captured %s: %s\n", item.Type, summary(*item))
		}
	}
	return nil
}
