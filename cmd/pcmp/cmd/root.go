// Package cmd implements the pcmp CLI commands.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/price-compare/internal/gateway"
	"github.com/donaldgifford/price-compare/internal/history"
	"github.com/donaldgifford/price-compare/internal/storage"
	"github.com/donaldgifford/price-compare/pkg/logger"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pcmp",
		Short: "Compare grocery prices from the terminal",
		Long: "pcmp searches the price comparison backend directly and prints\n" +
			"offers filtered and sorted like the web view, with the cheapest\n" +
			"in-stock offer marked. Recent searches are kept locally.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.pcmp.yaml)")
	rootCmd.PersistentFlags().
		String("backend", "http://localhost:8000", "search backend URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("lang", "ar", "result language (ar, en)")
	rootCmd.PersistentFlags().
		Duration("timeout", gateway.DefaultTimeout, "backend request timeout")
	rootCmd.PersistentFlags().
		String("state", "", "recent-search state file (default $HOME/.pcmp/state.json)")
	rootCmd.PersistentFlags().
		String("log-level", "warn", "log level (debug, info, warn, error)")

	for _, name := range []string{"backend", "output", "lang", "timeout", "state", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(popularCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(retailersCmd())
	rootCmd.AddCommand(healthCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pcmp")
	}

	viper.SetEnvPrefix("PCMP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *gateway.Client {
	return gateway.New(viper.GetString("backend"),
		gateway.WithTimeout(viper.GetDuration("timeout")),
		gateway.WithLogger(logger.New(viper.GetString("log-level"), "text")),
	)
}

func newHistory() *history.Store {
	path := viper.GetString("state")
	if path == "" {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		path = filepath.Join(home, ".pcmp", "state.json")
	}
	return history.New(storage.NewFile(path), logger.New(viper.GetString("log-level"), "text"))
}

func language() domain.Language {
	return domain.ParseLanguage(viper.GetString("lang"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
