package staging

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfcheck/item-audit/internal/domain"
)

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Store backed by PostgreSQL.
func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Upsert(ctx context.Context, checkName, barcode string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO staged_items (check_name, barcode, staged_at)
		VALUES ($1, $2, now())
		ON CONFLICT (check_name, barcode)
		DO UPDATE SET staged_at = now()`,
		checkName, barcode,
	)
	if err != nil {
		return fmt.Errorf("stage item %s/%s: %w", checkName, barcode, err)
	}
	return nil
}

func (s *pgStore) List(ctx context.Context, checkName string) ([]domain.StagedItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT check_name, barcode, staged_at
		FROM staged_items
		WHERE check_name = $1
		ORDER BY staged_at, barcode`,
		checkName,
	)
	if err != nil {
		return nil, fmt.Errorf("list staged items: %w", err)
	}
	defer rows.Close()

	var items []domain.StagedItem
	for rows.Next() {
		var it domain.StagedItem
		if err := rows.Scan(&it.CheckName, &it.Barcode, &it.StagedAt); err != nil {
			return nil, fmt.Errorf("scan staged item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *pgStore) DeleteBatch(ctx context.Context, checkName string, barcodes []string) error {
	if len(barcodes) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM staged_items
		WHERE check_name = $1 AND barcode = ANY($2)`,
		checkName, barcodes,
	)
	if err != nil {
		return fmt.Errorf("delete staged items: %w", err)
	}
	return nil
}
