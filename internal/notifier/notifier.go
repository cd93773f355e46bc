// Package notifier hands fully-formed notification requests to the external
// delivery collaborator. Rendering the final email layout and the actual
// send are that system's concern.
package notifier

import (
	"context"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Gateway accepts a notification request for delivery.
// Mocking this interface in tests gives full control over gateway behaviour
// without making real HTTP calls.
type Gateway interface {
	Send(ctx context.Context, req *domain.NotificationRequest) error
}
