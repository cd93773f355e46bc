// Package check implements the rule-evaluation pipeline: the eligibility
// gate and the per-rule predicate/action pairs applied to item change-events.
package check

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// Check names double as configuration lookup keys and staging partitions.
const (
	GateCheckName    = "item-gate"
	SuffixCheckName  = "barcode-suffix"
	RowTrayCheckName = "row-tray"
)

// Check is a single audit rule: a predicate deciding whether an eligible
// item needs attention, and an action applying the correction or staging
// the item for later re-verification.
type Check interface {
	Name() string
	ShouldProcess(item *domain.Item) bool
	Process(ctx context.Context, item *domain.Item) error
}

// RuleSet is the fixed, ordered collection of independent checks applied to
// every eligible item. Dispatch iterates the list; a failing check never
// blocks the checks after it.
type RuleSet struct {
	checks []Check
	logger *zap.Logger
}

func NewRuleSet(logger *zap.Logger, checks ...Check) *RuleSet {
	return &RuleSet{checks: checks, logger: logger}
}

// Apply runs every check whose predicate fires. Errors are collected and
// joined so the caller can log them; they do not affect webhook ack
// semantics.
func (rs *RuleSet) Apply(ctx context.Context, item *domain.Item) error {
	var errs []error
	for _, c := range rs.checks {
		if !c.ShouldProcess(item) {
			continue
		}
		if err := c.Process(ctx, item); err != nil {
			rs.logger.Error("check failed",
				zap.String("check", c.Name()),
				zap.String("barcode", item.Barcode),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
