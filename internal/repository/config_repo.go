package repository

import (
	"context"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// ConfigRepository reads the configuration entities maintained outside this
// service (checks, users, subscriptions). Editing them is a management
// concern and is out of scope here, so the surface is read-only.
// The pgx implementation is in pg_config_repo.go.
// Tests use a hand-written mock (mock_config_repo.go).
type ConfigRepository interface {
	// GetCheckByName resolves a check's configuration.
	// Returns domain.ErrCheckNotFound when no such check exists.
	GetCheckByName(ctx context.Context, name string) (*domain.CheckConfig, error)

	// ListChecks returns all configured checks.
	ListChecks(ctx context.Context) ([]*domain.CheckConfig, error)

	// Subscribers returns the email addresses subscribed to a check.
	Subscribers(ctx context.Context, checkID int64) ([]string, error)
}
