package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/blob"
	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/queue"
	"github.com/shelfcheck/item-audit/internal/staging"
)

// sweepLockTTL bounds how long a crashed coordinator can block the next
// sweep of the same check.
const sweepLockTTL = 5 * time.Minute

// Coordinator is the scheduled entry point of the batch re-verification
// workflow. It snapshots the staging table into an immutable run and emits
// the first continuation message; it never touches item data itself and is
// expected to finish quickly.
type Coordinator struct {
	staging staging.Store
	blobs   blob.Store
	runs    Repository
	q       *queue.Queue
	locker  Locker
	cfg     *config.Config
	logger  *zap.Logger
}

func NewCoordinator(
	stagingStore staging.Store,
	blobs blob.Store,
	runs Repository,
	q *queue.Queue,
	locker Locker,
	cfg *config.Config,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		staging: stagingStore,
		blobs:   blobs,
		runs:    runs,
		q:       q,
		locker:  locker,
		cfg:     cfg,
		logger:  logger,
	}
}

// Sweep starts a run for every item currently staged under checkName.
// The common case is an empty staging partition, in which case no run is
// created at all.
func (c *Coordinator) Sweep(ctx context.Context, checkName string) error {
	log := c.logger.With(zap.String("check", checkName))

	unlock, err := c.locker.Obtain(ctx, "sweep:"+checkName, sweepLockTTL)
	if errors.Is(err, ErrLockNotObtained) {
		log.Warn("sweep already in progress elsewhere, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("obtain sweep lock: %w", err)
	}
	defer unlock()

	staged, err := c.staging.List(ctx, checkName)
	if err != nil {
		return fmt.Errorf("list staged items: %w", err)
	}
	if len(staged) == 0 {
		log.Info("no items staged, skipping sweep")
		return nil
	}

	runID := uuid.New().String()
	worklist := make([]string, len(staged))
	for i, s := range staged {
		worklist[i] = s.Barcode
	}

	// The worklist goes to blob storage so continuation messages stay small
	// regardless of how many items are staged.
	worklistRef := fmt.Sprintf("run:%s:worklist", runID)
	if err := c.blobs.PutJSON(ctx, worklistRef, worklist, c.cfg.BlobTTL); err != nil {
		return fmt.Errorf("persist worklist: %w", err)
	}

	now := time.Now().UTC()
	if err := c.runs.Create(ctx, &domain.Run{
		ID:          runID,
		CheckName:   checkName,
		Status:      domain.RunPending,
		Cursor:      0,
		Total:       len(worklist),
		WorklistRef: worklistRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}

	msg := Continuation{RunID: runID, WorklistRef: worklistRef, Cursor: 0}.Encode()
	if err := c.q.Enqueue(msg); err != nil {
		// The run row exists, so the reaper will re-emit the continuation.
		log.Warn("could not enqueue initial continuation, reaper will recover",
			zap.String("run_id", runID), zap.Error(err))
		return nil
	}

	log.Info("run queued",
		zap.String("run_id", runID),
		zap.Int("items", len(worklist)),
	)
	return nil
}
