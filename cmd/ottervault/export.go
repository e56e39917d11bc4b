package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/usecase/search"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		out   string
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write items to a JSON file",
		Long: `Writes items, newest first, in the same JSON shape the vault persists.
--query filters the export without touching the saved search. Use --out - for
stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			items := a.search.Query(query, search.Options{Limit: limit})

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return clierr.Wrap(clierr.ExitCodeFile, "failed to create output", err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(items); err != nil {
				return clierr.Wrap(clierr.ExitCodeFile, "failed to encode items", err)
			}

			if out != "-" {
				fmt.Fprintln(cmd.OutOrStdout(), "exported", len(items), "items to", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "ottervault-export.json", "Output file, or - for stdout")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only export items matching this query")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max items to export (0 = all)")
	return cmd
}
