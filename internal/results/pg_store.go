package results

import (
	"context"
	"encoding/json"
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

func (s *pgStore) Upsert(ctx context.Context, runID string, item *domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal result item: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO run_results (run_id, barcode, item)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, barcode)
		DO UPDATE SET item = EXCLUDED.item`,
		runID, item.Barcode, data,
	)
	if err != nil {
		return fmt.Errorf("upsert result %s/%s: %w", runID, item.Barcode, err)
	}
	return nil
}

func (s *pgStore) List(ctx context.Context, runID string) ([]*domain.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT item FROM run_results
		WHERE run_id = $1
		ORDER BY barcode`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var item domain.Item
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("unmarshal result item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *pgStore) DeleteRun(ctx context.Context, runID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM run_results WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("delete results for run %s: %w", runID, err)
	}
	return nil
}
