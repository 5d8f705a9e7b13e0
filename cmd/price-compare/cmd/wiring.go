package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/donaldgifford/price-compare/internal/config"
	"github.com/donaldgifford/price-compare/internal/gateway"
	"github.com/donaldgifford/price-compare/internal/storage"
)

// openStorage returns the history backing store selected by cfg and a
// function releasing it.
func openStorage(ctx context.Context, cfg *config.HistoryConfig, log *slog.Logger) (storage.Storage, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Info("history storage", "driver", cfg.Driver)
		return storage.NewMemory(), func() {}, nil
	case config.DriverPostgres:
		pg, err := storage.NewPostgres(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("history storage", "driver", cfg.Driver, "host", cfg.Database.Host)
		return pg, pg.Close, nil
	default:
		log.Info("history storage", "driver", cfg.Driver, "path", cfg.Path)
		return storage.NewFile(cfg.Path), func() {}, nil
	}
}

func newGateway(cfg *config.BackendConfig, log *slog.Logger) *gateway.Client {
	opts := []gateway.Option{
		gateway.WithLogger(log),
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithMaxResults(cfg.MaxResults),
		gateway.WithIncludeAlternatives(cfg.Alternatives()),
		gateway.WithSlowRequestThreshold(cfg.SlowRequest),
	}
	if cfg.RateLimit.PerSecond > 0 {
		opts = append(opts, gateway.WithRateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst))
	}
	return gateway.New(cfg.URL, opts...)
}
