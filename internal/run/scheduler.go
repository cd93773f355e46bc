package run

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler triggers the coordinator on a fixed interval.
//
// A tick that arrives noticeably later than the configured interval (for
// example after a long GC pause or a suspended host) is logged as past due
// but the sweep proceeds identically.
type Scheduler struct {
	coordinator *Coordinator
	interval    time.Duration
	checks      []string
	logger      *zap.Logger
}

func NewScheduler(coordinator *Coordinator, interval time.Duration, checks []string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
		checks:      checks,
		logger:      logger,
	}
}

// Run ticks every interval and sweeps each configured check.
// Stops cleanly when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweep scheduler started", zap.Duration("interval", s.interval))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep scheduler stopping")
			return
		case now := <-ticker.C:
			if gap := now.Sub(last); gap > s.interval+time.Minute {
				s.logger.Warn("sweep timer is past due",
					zap.Duration("expected", s.interval),
					zap.Duration("actual", gap),
				)
			}
			last = now

			for _, checkName := range s.checks {
				if err := s.coordinator.Sweep(ctx, checkName); err != nil {
					s.logger.Error("sweep failed",
						zap.String("check", checkName),
						zap.Error(err),
					)
				}
			}
		}
	}
}
