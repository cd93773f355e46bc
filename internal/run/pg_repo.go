package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfcheck/item-audit/internal/domain"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository returns a Repository backed by PostgreSQL.
func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Create(ctx context.Context, run *domain.Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO runs (id, check_name, status, cursor_pos, total, worklist_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.CheckName, run.Status, run.Cursor, run.Total, run.WorklistRef,
		run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *pgRepository) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, check_name, status, cursor_pos, total, worklist_ref, created_at, updated_at
		FROM runs WHERE id = $1`, id)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return run, err
}

func (r *pgRepository) List(ctx context.Context) ([]*domain.Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, check_name, status, cursor_pos, total, worklist_ref, created_at, updated_at
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *pgRepository) Advance(ctx context.Context, id string, cursor int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE runs
		SET status = $1, cursor_pos = $2, updated_at = now()
		WHERE id = $3`,
		domain.RunInProgress, cursor, id,
	)
	if err != nil {
		return fmt.Errorf("advance run %s: %w", id, err)
	}
	return nil
}

func (r *pgRepository) Complete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE runs SET status = $1, updated_at = now() WHERE id = $2`,
		domain.RunCompleted, id,
	)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}
	return nil
}

func (r *pgRepository) Fail(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE runs SET status = $1, updated_at = now() WHERE id = $2`,
		domain.RunFailed, id,
	)
	if err != nil {
		return fmt.Errorf("fail run %s: %w", id, err)
	}
	return nil
}

func (r *pgRepository) FindStalled(ctx context.Context, cutoff time.Time) ([]*domain.Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, check_name, status, cursor_pos, total, worklist_ref, created_at, updated_at
		FROM runs
		WHERE status IN ($1, $2) AND updated_at < $3
		ORDER BY updated_at`,
		domain.RunPending, domain.RunInProgress, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("find stalled runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	err := row.Scan(&run.ID, &run.CheckName, &run.Status, &run.Cursor, &run.Total,
		&run.WorklistRef, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
