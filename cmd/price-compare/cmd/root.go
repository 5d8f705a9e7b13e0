// Package cmd implements the CLI commands for the price-compare server.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-compare/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "price-compare",
	Short: "Grocery price comparison backend-for-frontend",
	Long: "Serves price comparison results for a search backend that aggregates Egyptian grocery retailers: " +
		"filtering, sorting, cheapest-offer flags, suggestions and recent searches over a JSON API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file. A missing file at the default path
// falls back to built-in defaults; an explicit --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		fmt.Fprintf(os.Stderr, "config %s not found, using defaults\n", cfgFile)
		return config.Default(), nil
	}
	return nil, fmt.Errorf("loading config: %w", err)
}
