package check

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/ims"
	"github.com/shelfcheck/item-audit/internal/notifier"
	"github.com/shelfcheck/item-audit/internal/ratelimiter"
	"github.com/shelfcheck/item-audit/internal/report"
	"github.com/shelfcheck/item-audit/internal/repository"
)

// SuffixCheck appends the facility marker character to barcodes that are
// missing it, writes the corrected record upstream, and emits an immediate
// single-item notification.
//
// The predicate is the only safeguard against double-appending: the platform
// update call has no idempotency key, so a redelivered event for an
// already-corrected item relies on ShouldProcess returning false.
type SuffixCheck struct {
	cfgRepo repository.ConfigRepository
	client  ims.Client
	gateway notifier.Gateway
	limiter *ratelimiter.Limiter
	marker  string
	logger  *zap.Logger
}

func NewSuffixCheck(
	cfgRepo repository.ConfigRepository,
	client ims.Client,
	gateway notifier.Gateway,
	limiter *ratelimiter.Limiter,
	marker string,
	logger *zap.Logger,
) *SuffixCheck {
	return &SuffixCheck{
		cfgRepo: cfgRepo,
		client:  client,
		gateway: gateway,
		limiter: limiter,
		marker:  marker,
		logger:  logger,
	}
}

func (c *SuffixCheck) Name() string { return SuffixCheckName }

// ShouldProcess is false for items whose barcode already carries the marker.
func (c *SuffixCheck) ShouldProcess(item *domain.Item) bool {
	if strings.HasSuffix(item.Barcode, c.marker) {
		c.logger.Info("barcode already carries marker, skipping",
			zap.String("barcode", item.Barcode))
		return false
	}
	return true
}

// Process corrects the barcode upstream and notifies subscribers.
func (c *SuffixCheck) Process(ctx context.Context, item *domain.Item) error {
	cfg, err := c.cfgRepo.GetCheckByName(ctx, SuffixCheckName)
	if err != nil {
		return fmt.Errorf("resolve check %q: %w", SuffixCheckName, err)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("check %q: %w", SuffixCheckName, domain.ErrMissingAPIKey)
	}

	corrected := item.WithBarcode(item.Barcode + c.marker)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := c.client.Update(ctx, cfg.APIKey, &corrected); err != nil {
		return fmt.Errorf("update item %s: %w", item.Barcode, err)
	}

	c.logger.Info("barcode corrected",
		zap.String("barcode", item.Barcode),
		zap.String("corrected", corrected.Barcode),
	)

	html, err := report.SingleItem(cfg, &corrected)
	if err != nil {
		return err
	}
	recipients, err := c.cfgRepo.Subscribers(ctx, cfg.ID)
	if err != nil {
		return fmt.Errorf("resolve subscribers: %w", err)
	}

	if err := c.gateway.Send(ctx, &domain.NotificationRequest{
		Recipients: recipients,
		Subject:    cfg.EmailSubject,
		HTMLBody:   html,
	}); err != nil {
		return fmt.Errorf("notify correction of %s: %w", corrected.Barcode, err)
	}
	return nil
}

var _ Check = (*SuffixCheck)(nil)
