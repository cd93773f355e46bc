package check

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/config"
	"github.com/shelfcheck/item-audit/internal/domain"
	"github.com/shelfcheck/item-audit/internal/ims"
	"github.com/shelfcheck/item-audit/internal/ratelimiter"
	"github.com/shelfcheck/item-audit/internal/repository"
	"github.com/shelfcheck/item-audit/internal/retry"
)

// EligibilityFilter is the single funnel through which all downstream checks
// must pass. It takes a barcode, not an item: the event payload may be stale
// by the time heavier checks run, so canonical state is re-fetched.
type EligibilityFilter struct {
	cfgRepo repository.ConfigRepository
	client  ims.Client
	limiter *ratelimiter.Limiter
	policy  retry.Policy
	cfg     *config.Config
	logger  *zap.Logger
}

func NewEligibilityFilter(
	cfgRepo repository.ConfigRepository,
	client ims.Client,
	limiter *ratelimiter.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *EligibilityFilter {
	return &EligibilityFilter{
		cfgRepo: cfgRepo,
		client:  client,
		limiter: limiter,
		policy: retry.Policy{
			MaxAttempts: len(cfg.FetchBackoff) + 1,
			Backoff:     cfg.FetchBackoff,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Resolve fetches the canonical item for a barcode and applies the
// discard/provenance gates. Returns (nil, false) when the item is out of
// scope; every skip reason is logged, none is surfaced to the caller.
func (f *EligibilityFilter) Resolve(ctx context.Context, barcode string) (*domain.Item, bool) {
	log := f.logger.With(zap.String("barcode", barcode))

	gate, err := f.cfgRepo.GetCheckByName(ctx, GateCheckName)
	if err != nil {
		log.Error("gate check configuration lookup failed", zap.Error(err))
		return nil, false
	}
	if gate.APIKey == "" {
		log.Error("gate check configuration has no api key", zap.String("check", GateCheckName))
		return nil, false
	}

	var item *domain.Item
	err = f.policy.Do(ctx, isTransient, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		var fetchErr error
		item, fetchErr = f.client.Fetch(ctx, gate.APIKey, barcode)
		return fetchErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			log.Info("item not active upstream, skipping")
		} else {
			log.Warn("item fetch failed after retries, skipping", zap.Error(err))
		}
		return nil, false
	}

	if f.inDiscardLocation(item) {
		log.Info("item is in a discard location, skipping")
		return nil, false
	}

	if !slices.Contains(f.cfg.Provenance, item.Provenance) {
		log.Info("item has no recognized provenance, skipping",
			zap.String("provenance", item.Provenance))
		return nil, false
	}

	return item, true
}

func (f *EligibilityFilter) inDiscardLocation(item *domain.Item) bool {
	marker := f.cfg.DiscardMarker
	return strings.Contains(strings.ToLower(item.TempLocation), marker) ||
		strings.Contains(strings.ToLower(item.Location), marker)
}

// isTransient treats everything except a definitive upstream not-found as
// retryable: the item is presumed inactive or deleted, so retrying is
// pointless.
func isTransient(err error) bool {
	return !errors.Is(err, domain.ErrItemNotFound)
}
