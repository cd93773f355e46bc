package run

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/queue"
)

// Reaper polls for unfinished runs whose heartbeat has gone stale (the
// continuation message was dropped, or a worker crashed mid-chunk) and
// re-emits a continuation from the persisted cursor.
//
// Because every chunk write is an idempotent upsert, resuming at the last
// recorded cursor at worst re-processes one chunk.
type Reaper struct {
	runs       Repository
	q          *queue.Queue
	interval   time.Duration
	stallAfter time.Duration
	logger     *zap.Logger
}

func NewReaper(runs Repository, q *queue.Queue, interval, stallAfter time.Duration, logger *zap.Logger) *Reaper {
	return &Reaper{
		runs:       runs,
		q:          q,
		interval:   interval,
		stallAfter: stallAfter,
		logger:     logger,
	}
}

// Run ticks every interval and resumes any stalled runs.
// Stops cleanly when ctx is cancelled.
func (rp *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(rp.interval)
	defer ticker.Stop()

	rp.logger.Info("run reaper started",
		zap.Duration("interval", rp.interval),
		zap.Duration("stall_after", rp.stallAfter),
	)

	for {
		select {
		case <-ctx.Done():
			rp.logger.Info("run reaper stopping")
			return
		case <-ticker.C:
			rp.poll(ctx)
		}
	}
}

func (rp *Reaper) poll(ctx context.Context) {
	stalled, err := rp.runs.FindStalled(ctx, time.Now().UTC().Add(-rp.stallAfter))
	if err != nil {
		rp.logger.Error("reaper poll error", zap.Error(err))
		return
	}

	for _, r := range stalled {
		msg := Continuation{RunID: r.ID, WorklistRef: r.WorklistRef, Cursor: r.Cursor}.Encode()
		if err := rp.q.Enqueue(msg); err != nil {
			rp.logger.Warn("could not re-enqueue stalled run",
				zap.String("run_id", r.ID), zap.Error(err))
			continue
		}
		rp.logger.Warn("resumed stalled run",
			zap.String("run_id", r.ID),
			zap.String("check", r.CheckName),
			zap.Int("cursor", r.Cursor),
		)
	}
}
