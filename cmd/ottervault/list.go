package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/usecase/search"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		query  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items, newest first",
		Long: `Lists the items visible under the saved search. --query replaces the saved
search before listing; an empty --query clears it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return clierr.New(clierr.ExitCodeValidation, "--limit must not be negative")
			}

			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if cmd.Flags().Changed("query") {
				if err := a.query.Set(ctx, query); err != nil {
					return clierr.Wrap(clierr.ExitCodeStorage, "failed to save query", err)
				}
			}

			items := a.search.Visible(ctx, search.Options{Limit: limit})
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			fmt.Fprint(out, renderList(items, a.store.Len(), a.query.Get(ctx)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Save a new search query before listing")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Max items to show (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print items as JSON")
	return cmd
}
