package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/core"
)

func newRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove one item",
		Long: `Removes the item with the given id. A unique prefix of the id, as shown by
list, is enough. Asks twice before removing unless --yes is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			it, err := resolveItem(a.store.Items(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderItem(it))
			if err := requireConfirmation(cmd, opts.assumeYes, "remove this item",
				"Remove this item?",
				"Really remove it? This cannot be undone",
			); err != nil {
				return err
			}

			if err := a.store.Remove(ctx, it.ID); err != nil {
				return clierr.Wrap(clierr.ExitCodeStorage, "failed to remove item", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", it.ID)
			return nil
		},
	}
}

// resolveItem finds the item whose id equals ref or uniquely starts with it.
func resolveItem(items []core.Item, ref string) (core.Item, error) {
	var matches []core.Item
	for _, it := range items {
		if it.ID == ref {
			return it, nil
		}
		if ref != "" && strings.HasPrefix(it.ID, ref) {
			matches = append(matches, it)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return core.Item{}, clierr.New(clierr.ExitCodeNotFound, "no item with id "+ref).
			WithSuggestion("Run 'ottervault list' to see item ids")
	default:
		return core.Item{}, clierr.New(clierr.ExitCodeValidation,
			fmt.Sprintf("id prefix %q matches %d items", ref, len(matches))).
			WithSuggestion("Use a longer prefix")
	}
}
