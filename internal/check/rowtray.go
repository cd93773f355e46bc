package check

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/staging"
)

// rowTrayPattern is the required shelving-code format: a row marker at the
// start, then a module marker, then a shelf marker, in order.
var rowTrayPattern = regexp.MustCompile(`^R.*M.*S`)

// RowTrayCheck validates the shelving location encoded in the item call
// number and internal note. The correct row/tray value is not derivable
// automatically, so failures are staged for the next scheduled sweep
// instead of notified immediately; by then the records may have been fixed
// manually.
type RowTrayCheck struct {
	store         staging.Store
	skipLocations []string
	excludedNotes []string
	logger        *zap.Logger
}

func NewRowTrayCheck(store staging.Store, cfg *config.Config, logger *zap.Logger) *RowTrayCheck {
	return &RowTrayCheck{
		store:         store,
		skipLocations: cfg.SkipLocations,
		excludedNotes: cfg.ExcludedNotes,
		logger:        logger,
	}
}

func (c *RowTrayCheck) Name() string { return RowTrayCheckName }

// ShouldProcess is true when the item fails row/tray validation and is not
// suppressed by an excluded internal note.
func (c *RowTrayCheck) ShouldProcess(item *domain.Item) bool {
	if !c.failsFormat(item) {
		return false
	}
	if slices.Contains(c.excludedNotes, item.InternalNote) {
		c.logger.Info("internal note is excluded, suppressing staging",
			zap.String("barcode", item.Barcode),
			zap.String("note", item.InternalNote),
		)
		return false
	}
	return true
}

// failsFormat checks both candidate fields against the shelving pattern.
// A field containing a skip-location string is exempt from the format
// requirement but still counts as populated.
func (c *RowTrayCheck) failsFormat(item *domain.Item) bool {
	populated := false
	for _, field := range []string{item.AltCallNumber, item.InternalNote} {
		if field == "" {
			continue
		}
		populated = true

		if c.inSkipLocation(field) {
			c.logger.Info("field is in a skipped location, exempt from format check",
				zap.String("barcode", item.Barcode),
				zap.String("field", field),
			)
			continue
		}
		if !rowTrayPattern.MatchString(field) {
			return true
		}
	}
	return !populated
}

func (c *RowTrayCheck) inSkipLocation(field string) bool {
	for _, loc := range c.skipLocations {
		if strings.Contains(field, loc) {
			return true
		}
	}
	return false
}

// Process stages the failing item for the next scheduled re-verification.
func (c *RowTrayCheck) Process(ctx context.Context, item *domain.Item) error {
	if err := c.store.Upsert(ctx, RowTrayCheckName, item.Barcode); err != nil {
		return fmt.Errorf("stage item %s: %w", item.Barcode, err)
	}
	c.logger.Info("item staged for re-verification",
		zap.String("check", RowTrayCheckName),
		zap.String("barcode", item.Barcode),
	)
	return nil
}

var _ Check = (*RowTrayCheck)(nil)
