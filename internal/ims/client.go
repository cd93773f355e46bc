// Package ims is the narrow client contract for the item-management
// platform. Only two operations are consumed: fetch-by-barcode and
// update-item. Platform-side rate and transient-failure behavior is outside
// this system's control.
package ims

import (
	"context"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Client abstracts the item-management platform API.
// Mocking this interface in tests gives full control over upstream behaviour
// without making real HTTP calls.
//
// The platform authenticates each request with a per-check credential, so
// the key travels with the call rather than the client.
type Client interface {
	// Fetch returns the canonical item for a barcode.
	// Returns domain.ErrItemNotFound when the platform reports the item as
	// inactive or deleted; any other error is considered transient.
	Fetch(ctx context.Context, apiKey, barcode string) (*domain.Item, error)

	// Update writes a corrected item record back to the platform.
	Update(ctx context.Context, apiKey string, item *domain.Item) error
}
