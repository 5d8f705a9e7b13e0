package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-compare/internal/present"
)

func retailersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retailers",
		Short: "List the retailers the backend searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang := language()
			retailers, err := newClient().Retailers(cmd.Context())
			if err != nil {
				msg := present.Describe(err, lang)
				_ = printMessage(cmd.ErrOrStderr(), &msg)
				return fmt.Errorf("listing retailers: %w", err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), retailers)
			}
			return printRetailers(cmd.OutOrStdout(), retailers, lang)
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the search backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newClient()
			status, latency, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("probing %s: %w", client.BaseURL(), err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), status)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s, %s)\n",
				client.BaseURL(), status.Status, status.Timestamp, latency.Round(time.Millisecond))
			if err == nil && !status.Healthy() {
				err = fmt.Errorf("backend reports %q", status.Status)
			}
			return err
		},
	}
}
