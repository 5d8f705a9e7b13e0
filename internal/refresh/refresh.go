// Package refresh keeps the retailer list and backend health warm on a cron
// schedule so the BFF can answer without a backend round trip.
package refresh

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/price-compare/internal/gateway"
	"github.com/donaldgifford/price-compare/internal/metrics"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

// Backend is the subset of the gateway used by the refresher.
type Backend interface {
	Retailers(ctx context.Context) ([]domain.Retailer, error)
	Health(ctx context.Context) (*gateway.HealthStatus, time.Duration, error)
}

// Cache holds the last retailer list fetched from the backend.
type Cache struct {
	mu        sync.RWMutex
	retailers []domain.Retailer
	updatedAt time.Time
	healthy   bool
}

// Retailers returns a copy of the cached retailers and when they were
// fetched. A zero time means nothing has been fetched yet.
func (c *Cache) Retailers() ([]domain.Retailer, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.retailers), c.updatedAt
}

// Healthy reports the result of the last backend health probe.
func (c *Cache) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

func (c *Cache) setRetailers(r []domain.Retailer, at time.Time) {
	c.mu.Lock()
	c.retailers = r
	c.updatedAt = at
	c.mu.Unlock()
	metrics.RetailersCached.Set(float64(len(r)))
}

func (c *Cache) setHealthy(ok bool) {
	c.mu.Lock()
	c.healthy = ok
	c.mu.Unlock()
	if ok {
		metrics.BackendUp.Set(1)
	} else {
		metrics.BackendUp.Set(0)
	}
}

// Scheduler periodically refreshes a Cache from the backend.
type Scheduler struct {
	cron    *cron.Cron
	backend Backend
	cache   *Cache
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

// NewScheduler creates a Scheduler that refreshes cache every interval.
// Each run is bounded by timeout.
func NewScheduler(
	backend Backend,
	cache *Cache,
	interval time.Duration,
	timeout time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		backend: backend,
		cache:   cache,
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.run); err != nil {
		return nil, err
	}

	return s, nil
}

// Start runs one refresh immediately, then begins the schedule.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("scheduler started")
	s.Refresh(ctx)
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) run() {
	s.Refresh(context.Background())
}

// Refresh probes backend health and reloads the retailer list. A failed
// retailer fetch keeps the previous list.
func (s *Scheduler) Refresh(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	health, latency, err := s.backend.Health(ctx)
	switch {
	case err != nil:
		s.log.Warn("backend health probe failed", "error", err)
		s.cache.setHealthy(false)
	default:
		s.log.Debug("backend health probed", "status", health.Status, "latency", latency)
		s.cache.setHealthy(health.Healthy())
	}

	metrics.RetailerRefreshTotal.Inc()
	retailers, err := s.backend.Retailers(ctx)
	if err != nil {
		metrics.RetailerRefreshErrorsTotal.Inc()
		s.log.Error("retailer refresh failed", "error", err, "kind", gateway.KindOf(err))
		return
	}

	s.cache.setRetailers(retailers, s.now())
	s.log.Info("retailers refreshed", "count", len(retailers))
}
