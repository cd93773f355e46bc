package run

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/blob"
	"github.com/shelfcheck/item-audit/internal/check"
	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/ims"
	"github.com/shelfcheck/item-audit/internal/notifier"
	"github.com/shelfcheck/item-audit/internal/queue"
	"github.com/shelfcheck/item-audit/internal/ratelimiter"
	"github.com/shelfcheck/item-audit/internal/repository"
	"github.com/shelfcheck/item-audit/internal/results"
	"github.com/shelfcheck/item-audit/internal/staging"
)

type workerFixture struct {
	q       *queue.Queue
	blobs   *blob.MockStore
	runs    *MockRepository
	results *results.MockStore
	staging *staging.MockStore
	client  *ims.MockClient
	cfgRepo *repository.MockConfigRepository
	gateway *notifier.MockGateway
	cfg     *config.Config
	worker  *Worker

	chunkItems   int
	stillFailing int
	completed    int
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	f := &workerFixture{
		q:       queue.New(10),
		blobs:   blob.NewMockStore(),
		runs:    NewMockRepository(),
		results: results.NewMockStore(),
		staging: staging.NewMockStore(),
		client:  ims.NewMockClient(),
		cfgRepo: repository.NewMockConfigRepository(),
		gateway: notifier.NewMockGateway(),
		cfg: &config.Config{
			BatchSize:       50,
			BlobTTL:         time.Hour,
			InlineBodyLimit: 32 * 1024,
			DiscardMarker:   "discard",
			Provenance:      []string{"Property of Georgetown University"},
			FetchBackoff:    []time.Duration{time.Millisecond},
		},
	}

	f.cfgRepo.AddCheck(&domain.CheckConfig{ID: 1, Name: check.GateCheckName, APIKey: "gate-key"})
	f.cfgRepo.AddCheck(&domain.CheckConfig{ID: 3, Name: check.RowTrayCheckName, EmailSubject: "Row/tray audit"})
	f.cfgRepo.AddSubscribers(3, "ops@example.edu")

	logger := zap.NewNop()
	limiter := ratelimiter.New(10000)
	filter := check.NewEligibilityFilter(f.cfgRepo, f.client, limiter, f.cfg, logger)
	rowTray := check.NewRowTrayCheck(f.staging, f.cfg, logger)

	f.worker = NewWorker(
		f.q, f.blobs, f.runs, f.results, f.staging,
		filter, rowTray, f.cfgRepo, f.gateway, f.cfg, logger,
		MetricHooks{
			OnChunk: func(items int) { f.chunkItems += items },
			OnRunCompleted: func(stillFailing int) {
				f.completed++
				f.stillFailing = stillFailing
			},
		},
	)
	return f
}

// seedRun stages the barcodes, writes the worklist blob, and persists a
// pending run, mirroring what the coordinator does during a sweep.
func (f *workerFixture) seedRun(t *testing.T, barcodes []string) Continuation {
	t.Helper()
	ctx := context.Background()

	for _, b := range barcodes {
		if err := f.staging.Upsert(ctx, check.RowTrayCheckName, b); err != nil {
			t.Fatalf("seed staging: %v", err)
		}
	}

	runID := "test-run"
	ref := fmt.Sprintf("run:%s:worklist", runID)
	if err := f.blobs.PutJSON(ctx, ref, barcodes, f.cfg.BlobTTL); err != nil {
		t.Fatalf("seed worklist: %v", err)
	}
	now := time.Now().UTC()
	if err := f.runs.Create(ctx, &domain.Run{
		ID:          runID,
		CheckName:   check.RowTrayCheckName,
		Status:      domain.RunPending,
		Total:       len(barcodes),
		WorklistRef: ref,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	return Continuation{RunID: runID, WorklistRef: ref, Cursor: 0}
}

func stillFailingItem(barcode string) *domain.Item {
	return &domain.Item{
		Barcode:       barcode,
		Title:         "Title of " + barcode,
		AltCallNumber: "shelf 9",
		Provenance:    "Property of Georgetown University",
	}
}

func fixedItem(barcode string) *domain.Item {
	return &domain.Item{
		Barcode:       barcode,
		AltCallNumber: "R12M03S04",
		Provenance:    "Property of Georgetown University",
	}
}

// drain drives the run to completion the way the worker loop would,
// processing each continuation the previous chunk enqueued.
func (f *workerFixture) drain(t *testing.T, first Continuation) {
	t.Helper()
	ctx := context.Background()

	msg := first.Encode()
	for i := 0; i < 100; i++ {
		if err := f.worker.Process(ctx, msg); err != nil {
			t.Fatalf("Process() error: %v", err)
		}
		if f.q.Depth() == 0 {
			return
		}
		msg, _ = f.q.Dequeue(ctx)
	}
	t.Fatal("run did not finish within 100 chunks")
}

func TestWorkerProcessesRunInChunks(t *testing.T) {
	f := newWorkerFixture(t)

	// 120 staged barcodes: every third one was fixed upstream since staging.
	var barcodes []string
	wantFailing := 0
	for i := 0; i < 120; i++ {
		b := fmt.Sprintf("b%03d", i)
		barcodes = append(barcodes, b)
		if i%3 == 0 {
			f.client.Put(fixedItem(b))
		} else {
			f.client.Put(stillFailingItem(b))
			wantFailing++
		}
	}

	cont := f.seedRun(t, barcodes)
	f.drain(t, cont)

	r, err := f.runs.Get(context.Background(), cont.RunID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if r.Status != domain.RunCompleted {
		t.Errorf("run status = %q, want completed", r.Status)
	}

	if f.chunkItems != 120 {
		t.Errorf("chunk hook total = %d, want 120", f.chunkItems)
	}
	if f.completed != 1 {
		t.Errorf("completion hook fired %d times, want 1", f.completed)
	}
	if f.stillFailing != wantFailing {
		t.Errorf("still-failing count = %d, want %d", f.stillFailing, wantFailing)
	}

	if f.gateway.Count() != 1 {
		t.Fatalf("reports sent = %d, want 1", f.gateway.Count())
	}
	sent := f.gateway.Sent[0]
	if sent.Subject != "Row/tray audit" {
		t.Errorf("report subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.HTMLBody, "b001") {
		t.Error("report missing a still-failing barcode")
	}
	if strings.Contains(sent.HTMLBody, ">b000<") {
		t.Error("report includes a fixed barcode")
	}

	// All ephemeral state is reclaimed.
	if got := f.staging.Count(check.RowTrayCheckName); got != 0 {
		t.Errorf("staging not drained: %d left", got)
	}
	if got := f.results.Count(cont.RunID); got != 0 {
		t.Errorf("results not deleted: %d left", got)
	}
	if f.blobs.Has(cont.WorklistRef) {
		t.Error("worklist blob not deleted")
	}
}

func TestWorkerRunWithNoFailuresSendsNoReport(t *testing.T) {
	f := newWorkerFixture(t)

	barcodes := []string{"b1", "b2"}
	for _, b := range barcodes {
		f.client.Put(fixedItem(b))
	}

	cont := f.seedRun(t, barcodes)
	f.drain(t, cont)

	if f.gateway.Count() != 0 {
		t.Errorf("reports sent = %d, want 0", f.gateway.Count())
	}
	if got := f.staging.Count(check.RowTrayCheckName); got != 0 {
		t.Errorf("staging not drained: %d left", got)
	}
	r, _ := f.runs.Get(context.Background(), cont.RunID)
	if r.Status != domain.RunCompleted {
		t.Errorf("run status = %q, want completed", r.Status)
	}
}

func TestWorkerSkipsItemsGoneUpstream(t *testing.T) {
	f := newWorkerFixture(t)

	// b2 is never seeded upstream: deleted since it was staged.
	f.client.Put(stillFailingItem("b1"))
	cont := f.seedRun(t, []string{"b1", "b2"})
	f.drain(t, cont)

	if f.gateway.Count() != 1 {
		t.Fatalf("reports sent = %d, want 1", f.gateway.Count())
	}
	if strings.Contains(f.gateway.Sent[0].HTMLBody, "b2") {
		t.Error("report includes an item that no longer exists upstream")
	}
	// The vanished barcode still leaves staging.
	if got := f.staging.Count(check.RowTrayCheckName); got != 0 {
		t.Errorf("staging not drained: %d left", got)
	}
}

func TestWorkerLeavesConcurrentlyStagedItems(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	f.client.Put(fixedItem("b1"))
	cont := f.seedRun(t, []string{"b1"})

	// Staged by webhook traffic after the sweep snapshot.
	if err := f.staging.Upsert(ctx, check.RowTrayCheckName, "late"); err != nil {
		t.Fatalf("seed staging: %v", err)
	}

	f.drain(t, cont)

	if got := f.staging.Count(check.RowTrayCheckName); got != 1 {
		t.Errorf("late-staged item count = %d, want 1", got)
	}
}

func TestWorkerOffloadsOversizedReport(t *testing.T) {
	f := newWorkerFixture(t)
	f.cfg.InlineBodyLimit = 64

	f.client.Put(stillFailingItem("b1"))
	cont := f.seedRun(t, []string{"b1"})
	f.drain(t, cont)

	if f.gateway.Count() != 1 {
		t.Fatalf("reports sent = %d, want 1", f.gateway.Count())
	}
	sent := f.gateway.Sent[0]
	if sent.HTMLBody != "" {
		t.Error("oversized body should not be inlined")
	}
	wantRef := "run:" + cont.RunID + ":report"
	if sent.BodyRef != wantRef {
		t.Errorf("body ref = %q, want %q", sent.BodyRef, wantRef)
	}
	if !f.blobs.Has(wantRef) {
		t.Error("report blob not written")
	}
}

func TestWorkerFailsRunWithMissingWorklist(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	// A long-stalled run whose worklist blob has already aged out.
	cont := f.seedRun(t, []string{"b1"})
	staleHeartbeat(t, f, cont.RunID, 0)
	if err := f.blobs.Delete(ctx, cont.WorklistRef); err != nil {
		t.Fatalf("delete worklist: %v", err)
	}

	rp := newTestReaper(f)
	rp.poll(ctx)
	msg, ok := f.q.Dequeue(ctx)
	if !ok {
		t.Fatal("no continuation re-emitted for stalled run")
	}
	if err := f.worker.Process(ctx, msg); err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	r, err := f.runs.Get(ctx, cont.RunID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if r.Status != domain.RunFailed {
		t.Errorf("run status = %q, want failed", r.Status)
	}

	// The failed run must leave the reaper's view, or its continuation
	// would be re-emitted on every poll.
	rp.poll(ctx)
	if f.q.Depth() != 0 {
		t.Errorf("queue depth after second poll = %d, want 0", f.q.Depth())
	}
}

func TestWorkerDropsMalformedMessage(t *testing.T) {
	f := newWorkerFixture(t)

	if err := f.worker.Process(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("malformed message should be dropped, got error: %v", err)
	}
}

func TestWorkerDropsUnknownRun(t *testing.T) {
	f := newWorkerFixture(t)

	msg := Continuation{RunID: "ghost", WorklistRef: "run:ghost:worklist", Cursor: 0}.Encode()
	if err := f.worker.Process(context.Background(), msg); err != nil {
		t.Fatalf("unknown run should be dropped, got error: %v", err)
	}
}

func TestWorkerDropsCompletedRun(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	f.client.Put(fixedItem("b1"))
	cont := f.seedRun(t, []string{"b1"})
	f.drain(t, cont)

	// Redelivery of the final continuation after completion.
	if err := f.worker.Process(ctx, cont.Encode()); err != nil {
		t.Fatalf("redelivered continuation should be dropped, got error: %v", err)
	}
	if f.completed != 1 {
		t.Errorf("completion hook fired %d times, want 1", f.completed)
	}
}

func TestWorkerReportsEvenWhenSubscriberListEmpty(t *testing.T) {
	f := newWorkerFixture(t)

	// Replace the row-tray config with one that has no subscribers.
	f.cfgRepo.AddCheck(&domain.CheckConfig{ID: 9, Name: check.RowTrayCheckName, EmailSubject: "Row/tray audit"})

	f.client.Put(stillFailingItem("b1"))
	cont := f.seedRun(t, []string{"b1"})
	f.drain(t, cont)

	if f.gateway.Count() != 1 {
		t.Fatalf("reports sent = %d, want 1", f.gateway.Count())
	}
	if len(f.gateway.Sent[0].Recipients) != 0 {
		t.Errorf("recipients = %v, want none", f.gateway.Sent[0].Recipients)
	}
	r, _ := f.runs.Get(context.Background(), cont.RunID)
	if r.Status != domain.RunCompleted {
		t.Errorf("run status = %q, want completed", r.Status)
	}
}
