package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-compare/pkg/suggest"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest QUERY",
		Short: "Show spelling corrections and related searches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := suggest.Suggest(args[0])
			remote := newClient().Suggestions(cmd.Context(), args[0], language())
			out := suggest.Merge(local, remote)

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), out)
			}
			return printList(cmd.OutOrStdout(), out)
		},
	}
}

func popularCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "popular",
		Short: "Show popular searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newClient().PopularSearches(cmd.Context(), language())

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), out)
			}
			return printList(cmd.OutOrStdout(), out)
		},
	}
}
