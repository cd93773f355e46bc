package run

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/blob"
	"github.com/shelfcheck/item-audit/internal/check"
	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/notifier"
	"github.com/shelfcheck/item-audit/internal/queue"
	"github.com/shelfcheck/item-audit/internal/report"
	"github.com/shelfcheck/item-audit/internal/repository"
	"github.com/shelfcheck/item-audit/internal/results"
	"github.com/shelfcheck/item-audit/internal/staging"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the worker constructor signature clean.
type MetricHooks struct {
	OnChunk        func(items int)
	OnRunCompleted func(stillFailing int)
}

// Worker consumes continuation messages and processes one bounded chunk of
// a run per message. Each invocation is independent: all forward-progress
// state is carried in the message and the run row, so any invocation can
// crash and be re-driven by the reaper without corrupting the run.
type Worker struct {
	q       *queue.Queue
	blobs   blob.Store
	runs    Repository
	results results.Store
	staging staging.Store
	filter  *check.EligibilityFilter
	rowTray *check.RowTrayCheck
	cfgRepo repository.ConfigRepository
	gateway notifier.Gateway
	cfg     *config.Config
	logger  *zap.Logger
	hooks   MetricHooks
}

func NewWorker(
	q *queue.Queue,
	blobs blob.Store,
	runs Repository,
	resultStore results.Store,
	stagingStore staging.Store,
	filter *check.EligibilityFilter,
	rowTray *check.RowTrayCheck,
	cfgRepo repository.ConfigRepository,
	gateway notifier.Gateway,
	cfg *config.Config,
	logger *zap.Logger,
	hooks MetricHooks,
) *Worker {
	if hooks.OnChunk == nil {
		hooks.OnChunk = func(int) {}
	}
	if hooks.OnRunCompleted == nil {
		hooks.OnRunCompleted = func(int) {}
	}
	return &Worker{
		q:       q,
		blobs:   blobs,
		runs:    runs,
		results: resultStore,
		staging: stagingStore,
		filter:  filter,
		rowTray: rowTray,
		cfgRepo: cfgRepo,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		hooks:   hooks,
	}
}

// Run blocks until ctx is cancelled, processing one continuation message
// per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("batch worker started")
	for {
		msg, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("batch worker stopping")
			return
		}
		if err := w.Process(ctx, msg); err != nil {
			w.logger.Error("chunk processing failed, reaper will resume", zap.Error(err))
		}
	}
}

// Process handles a single continuation message: one chunk of a run.
// A malformed message is logged and dropped; the run's persisted state
// lets the reaper re-emit a fresh continuation. Every write below is an
// idempotent upsert, so re-processing the same chunk is safe.
func (w *Worker) Process(ctx context.Context, msg []byte) error {
	cont, err := ParseContinuation(msg)
	if err != nil {
		w.logger.Error("dropping malformed continuation message", zap.Error(err))
		return nil
	}

	log := w.logger.With(zap.String("run_id", cont.RunID))

	r, err := w.runs.Get(ctx, cont.RunID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Error("continuation references unknown run, dropping")
			return nil
		}
		return fmt.Errorf("load run: %w", err)
	}
	if r.Status.Terminal() {
		// Redelivery after the run already finished or failed.
		log.Info("continuation for terminal run, dropping",
			zap.String("status", string(r.Status)))
		return nil
	}

	var worklist []string
	if err := w.blobs.GetJSON(ctx, cont.WorklistRef, &worklist); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The blob expired or was already reclaimed. Without it the run
			// can never make progress, so it must leave the reaper's view or
			// its continuation would be re-emitted on every poll forever.
			log.Error("worklist blob missing, failing run",
				zap.String("worklist_ref", cont.WorklistRef))
			if err := w.runs.Fail(ctx, r.ID); err != nil {
				return fmt.Errorf("fail run with missing worklist: %w", err)
			}
			return nil
		}
		return fmt.Errorf("load worklist: %w", err)
	}

	cursor := cont.Cursor
	if cursor > len(worklist) {
		cursor = len(worklist)
	}
	end := cursor + w.cfg.BatchSize
	if end > len(worklist) {
		end = len(worklist)
	}
	chunk := worklist[cursor:end]

	// Heartbeat before the slow part so the reaper can tell a working run
	// from a stalled one.
	if err := w.runs.Advance(ctx, r.ID, cursor); err != nil {
		return fmt.Errorf("advance run: %w", err)
	}

	log.Info("processing chunk",
		zap.Int("cursor", cursor),
		zap.Int("chunk", len(chunk)),
		zap.Int("total", len(worklist)),
	)

	// Strictly sequential: bounds load on the upstream platform and
	// respects its rate limits.
	for _, barcode := range chunk {
		item, ok := w.filter.Resolve(ctx, barcode)
		if !ok {
			continue
		}
		if !w.rowTray.ShouldProcess(item) {
			// Fixed upstream since staging; it simply drains at finalize.
			continue
		}
		if err := w.results.Upsert(ctx, r.ID, item); err != nil {
			return fmt.Errorf("record still-failing item %s: %w", barcode, err)
		}
	}
	w.hooks.OnChunk(len(chunk))

	newCursor := cursor + len(chunk)
	if newCursor < len(worklist) {
		if err := w.runs.Advance(ctx, r.ID, newCursor); err != nil {
			return fmt.Errorf("advance run: %w", err)
		}
		next := Continuation{RunID: r.ID, WorklistRef: cont.WorklistRef, Cursor: newCursor}.Encode()
		if err := w.q.Enqueue(next); err != nil {
			log.Warn("could not enqueue next continuation, reaper will recover", zap.Error(err))
		}
		return nil
	}

	return w.finalize(ctx, r, worklist)
}

// finalize reports the still-failing items, drains the staging table for
// every barcode in the worklist, and reclaims all ephemeral run state.
// An error part-way through leaves the run unfinished; the reaper re-emits
// the final continuation and the remaining deletes are safe to re-attempt
// because deletes of absent keys succeed.
func (w *Worker) finalize(ctx context.Context, r *domain.Run, worklist []string) error {
	log := w.logger.With(zap.String("run_id", r.ID))

	stillFailing, err := w.results.List(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	if len(stillFailing) > 0 {
		if err := w.report(ctx, r, stillFailing); err != nil {
			return err
		}
	}

	// The drain step: every worklist barcode leaves staging, whether it
	// passed re-verification or landed in the report. Entries staged by
	// concurrent webhook traffic during the run are untouched.
	if err := w.staging.DeleteBatch(ctx, r.CheckName, worklist); err != nil {
		return fmt.Errorf("drain staging: %w", err)
	}
	if err := w.results.DeleteRun(ctx, r.ID); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}
	if err := w.blobs.Delete(ctx, r.WorklistRef); err != nil {
		return fmt.Errorf("delete worklist blob: %w", err)
	}
	if err := w.runs.Complete(ctx, r.ID); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	w.hooks.OnRunCompleted(len(stillFailing))
	log.Info("run complete",
		zap.Int("processed", len(worklist)),
		zap.Int("still_failing", len(stillFailing)),
	)
	return nil
}

func (w *Worker) report(ctx context.Context, r *domain.Run, items []*domain.Item) error {
	cfgCheck, err := w.cfgRepo.GetCheckByName(ctx, r.CheckName)
	if err != nil {
		// Configuration fault: nobody to notify, but the drain must still
		// happen or the same items pile into every future run.
		w.logger.Error("check configuration missing, skipping report",
			zap.String("run_id", r.ID),
			zap.String("check", r.CheckName),
			zap.Error(err),
		)
		return nil
	}

	html, err := report.Consolidated(cfgCheck, items)
	if err != nil {
		return err
	}
	recipients, err := w.cfgRepo.Subscribers(ctx, cfgCheck.ID)
	if err != nil {
		return fmt.Errorf("resolve subscribers: %w", err)
	}

	req := &domain.NotificationRequest{
		Recipients: recipients,
		Subject:    cfgCheck.EmailSubject,
	}

	// Oversized bodies go to blob storage; the notification carries only a
	// pointer, respecting the gateway's message-size limits.
	if len(html) > w.cfg.InlineBodyLimit {
		ref := fmt.Sprintf("run:%s:report", r.ID)
		if err := w.blobs.PutJSON(ctx, ref, html, w.cfg.BlobTTL); err != nil {
			return fmt.Errorf("persist report body: %w", err)
		}
		req.BodyRef = ref
	} else {
		req.HTMLBody = html
	}

	if err := w.gateway.Send(ctx, req); err != nil {
		return fmt.Errorf("send consolidated report: %w", err)
	}
	return nil
}
