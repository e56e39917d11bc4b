package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
)

const (
	responseYes = "yes"
	responseY   = "y"
)

// confirmPrompt asks one y/N question on cmd's streams.
func confirmPrompt(cmd *cobra.Command, r *bufio.Reader, message string) (bool, error) {
	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", message)

	response, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == responseY || response == responseYes, nil
}

// requireConfirmation asks every question in order and stops at the first
// "no". assumeYes skips all of them.
func requireConfirmation(cmd *cobra.Command, assumeYes bool, action string, questions ...string) error {
	if assumeYes {
		return nil
	}

	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(cmd.OutOrStdout(), "Warning: You are about to %s\n", action)

	r := bufio.NewReader(cmd.InOrStdin())
	for _, q := range questions {
		ok, err := confirmPrompt(cmd, r, q)
		if err != nil {
			return clierr.Wrap(clierr.ExitCodeGeneral, "failed to read confirmation", err)
		}
		if !ok {
			return clierr.New(clierr.ExitCodeCancellation, "operation canceled by user")
		}
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
