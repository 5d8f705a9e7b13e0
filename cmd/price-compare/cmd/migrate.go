package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-compare/internal/config"
	"github.com/donaldgifford/price-compare/internal/storage"
	"github.com/donaldgifford/price-compare/pkg/logger"
)

const migrateTimeout = 60 * time.Second

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run history database migrations",
	Long:  "Applies pending migrations when history.driver is postgres. Serve also migrates on startup.",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.History.Driver != config.DriverPostgres {
		log.Info("nothing to migrate", "driver", cfg.History.Driver)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	pg, err := storage.NewPostgres(ctx, cfg.History.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pg.Close()

	log.Info("running migrations", "host", cfg.History.Database.Host)

	if err := pg.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	log.Info("migrations complete")
	return nil
}
