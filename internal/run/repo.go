package run

import (
	"context"
	"time"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Repository persists run state alongside the message payload, so a run
// whose continuation message is lost remains detectable and resumable by
// the reaper instead of stalling forever.
// The pgx implementation is in pg_repo.go. Tests use MockRepository.
type Repository interface {
	Create(ctx context.Context, r *domain.Run) error
	Get(ctx context.Context, id string) (*domain.Run, error)
	List(ctx context.Context) ([]*domain.Run, error)

	// Advance moves the cursor forward and refreshes the heartbeat,
	// promoting the run to in_progress if it is still pending.
	Advance(ctx context.Context, id string, cursor int) error

	// Complete marks the run finished after all cleanup succeeded.
	Complete(ctx context.Context, id string) error

	// Fail terminates a run that can never finish, such as one whose
	// worklist blob expired. Failed runs are invisible to FindStalled.
	Fail(ctx context.Context, id string) error

	// FindStalled returns unfinished runs whose heartbeat is older than
	// the given cutoff.
	FindStalled(ctx context.Context, cutoff time.Time) ([]*domain.Run, error)
}
