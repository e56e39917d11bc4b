package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/usecase/vault"
)

func newClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item and reset the saved search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			n := a.store.Len()
			if err := requireConfirmation(cmd, opts.assumeYes,
				fmt.Sprintf("remove all %d items", n),
				"Clear the vault?",
			); err != nil {
				return err
			}

			if err := vault.ClearAll(ctx, a.store, a.query); err != nil {
				return clierr.Wrap(clierr.ExitCodeStorage, "failed to clear vault", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d items\n", n)
			return nil
		},
	}
}
