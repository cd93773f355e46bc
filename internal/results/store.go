// Package results holds still-failing item snapshots for the lifetime of a
// single batch run. Rows are aggregated once at finalization into the
// consolidated report and then discarded with the rest of the run's storage.
package results

import (
	"context"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Store persists per-run results keyed by (run id, barcode).
// The pgx implementation is in pg_store.go. Tests use MockStore.
type Store interface {
	// Upsert records an item as still failing. Writing the same barcode
	// twice in a run overwrites, which keeps chunk re-execution safe.
	Upsert(ctx context.Context, runID string, item *domain.Item) error

	// List returns every still-failing item recorded for a run.
	List(ctx context.Context, runID string) ([]*domain.Item, error)

	// DeleteRun removes all rows for a run. Absent rows are success.
	DeleteRun(ctx context.Context, runID string) error
}
