// Package staging is the durable deferral table: items that failed the
// row/tray check wait here for the next scheduled re-verification sweep
// instead of triggering an immediate notification.
package staging

import (
	"context"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Store persists pending-reverification markers keyed by (check name, barcode).
// The pgx implementation is in pg_store.go. Tests use MockStore.
type Store interface {
	// Upsert stages a barcode for a check. Staging the same barcode twice
	// yields exactly one record.
	Upsert(ctx context.Context, checkName, barcode string) error

	// List returns all staged items for a check's partition.
	List(ctx context.Context, checkName string) ([]domain.StagedItem, error)

	// DeleteBatch drains the given barcodes from a check's partition.
	// Deleting an already-absent barcode is success.
	DeleteBatch(ctx context.Context, checkName string, barcodes []string) error
}
