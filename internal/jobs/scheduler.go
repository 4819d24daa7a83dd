// Package jobs runs the periodic maintenance tasks, currently the purge of
// expired login sessions.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/AirLinkPros/airlink-backend/internal/logging"
	"github.com/AirLinkPros/airlink-backend/internal/metrics"
)

// Purger deletes sessions that expired before now.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler wraps robfig/cron and owns the purge loop.
type Scheduler struct {
	cron    *cron.Cron
	purger  Purger
	metrics *metrics.Metrics
	log     *zap.Logger
	spec    string // cron spec, e.g. "@every 1h"
	now     func() time.Time
}

func New(purger Purger, spec string, m *metrics.Metrics, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		purger:  purger,
		metrics: m,
		log:     logging.OrNop(log),
		spec:    spec,
		now:     time.Now,
	}
}

// Start registers the purge job and starts the scheduler. One purge runs
// immediately so sessions left over from before a restart are cleared.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("[scheduler] cron started", zap.String("spec", s.spec))

	go s.RunOnce(ctx)

	return nil
}

// Stop halts the scheduler and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("[scheduler] cron stopped")
}

// RunOnce purges expired sessions and returns how many were removed.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}

	n, err := s.purger.PurgeExpired(ctx, s.now())
	if err != nil {
		s.log.Warn("[scheduler] session purge failed", zap.Error(err))
		return 0
	}

	s.metrics.AddSessionsPurged(n)
	if n > 0 {
		s.log.Info("[scheduler] purged expired sessions", zap.Int64("count", n))
	}
	return n
}
