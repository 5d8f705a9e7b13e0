package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage recent searches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := newHistory().List(cmd.Context())
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), entries)
			}
			return printList(cmd.OutOrStdout(), entries)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			newHistory().Clear(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Recent searches cleared.")
			return err
		},
	})

	return cmd
}
