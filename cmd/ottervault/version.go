package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const unknownValue = "unknown"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// Printing the version never needs the config file.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			ver := Version
			if ver == "" {
				ver = "dev"
			}
			bt := BuildTime
			if bt == "" {
				bt = unknownValue
			}
			gc := GitCommit
			if gc == "" {
				gc = unknownValue
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ottervault version %s\n", ver)
			fmt.Fprintf(out, "Built: %s\n", bt)
			fmt.Fprintf(out, "Git commit: %s\n", gc)
		},
	}
}
