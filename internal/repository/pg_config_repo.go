package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfcheck/item-audit/internal/domain"
)

type pgConfigRepository struct {
	pool *pgxpool.Pool
}

// NewPgConfigRepository returns a ConfigRepository backed by PostgreSQL.
func NewPgConfigRepository(pool *pgxpool.Pool) ConfigRepository {
	return &pgConfigRepository{pool: pool}
}

func (r *pgConfigRepository) GetCheckByName(ctx context.Context, name string) (*domain.CheckConfig, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, api_key, report_path, email_subject, email_body, created_at, updated_at
		FROM checks WHERE name = $1`, name)

	var c domain.CheckConfig
	err := row.Scan(&c.ID, &c.Name, &c.APIKey, &c.ReportPath, &c.EmailSubject, &c.EmailBody,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCheckNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get check %q: %w", name, err)
	}
	return &c, nil
}

func (r *pgConfigRepository) ListChecks(ctx context.Context) ([]*domain.CheckConfig, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, api_key, report_path, email_subject, email_body, created_at, updated_at
		FROM checks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var checks []*domain.CheckConfig
	for rows.Next() {
		var c domain.CheckConfig
		if err := rows.Scan(&c.ID, &c.Name, &c.APIKey, &c.ReportPath, &c.EmailSubject,
			&c.EmailBody, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		checks = append(checks, &c)
	}
	return checks, rows.Err()
}

func (r *pgConfigRepository) Subscribers(ctx context.Context, checkID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.email
		FROM users u
		JOIN subscriptions s ON s.user_id = u.id
		WHERE s.check_id = $1
		ORDER BY u.email`, checkID)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
