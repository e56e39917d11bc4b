package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
)

func newQueryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Show or change the saved search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			fmt.Fprintln(cmd.OutOrStdout(), a.query.Get(ctx))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <text...>",
		Short: "Save a search query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveQuery(cmd, opts, strings.Join(args, " "))
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the saved search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveQuery(cmd, opts, "")
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}

func saveQuery(cmd *cobra.Command, opts *options, q string) error {
	ctx := cmd.Context()
	a, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if err := a.query.Set(ctx, q); err != nil {
		return clierr.Wrap(clierr.ExitCodeStorage, "failed to save query", err)
	}
	return nil
}
