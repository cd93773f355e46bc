package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/shelfcheck/item-audit/internal/check"
)

// IntakeService glues the eligibility filter and the rule set for the
// webhook path. HTTP handlers depend on this service, not on the checks.
type IntakeService struct {
	filter *check.EligibilityFilter
	rules  *check.RuleSet
	logger *zap.Logger
}

func NewIntakeService(filter *check.EligibilityFilter, rules *check.RuleSet, logger *zap.Logger) *IntakeService {
	return &IntakeService{filter: filter, rules: rules, logger: logger}
}

// Handle runs the full rule-evaluation pipeline for one change-event.
// The barcode, not the event payload, drives processing: canonical item
// state is re-fetched by the filter. Errors are logged and swallowed here
// because webhook ack semantics are decoupled from business outcome.
func (s *IntakeService) Handle(ctx context.Context, barcode string) {
	item, ok := s.filter.Resolve(ctx, barcode)
	if !ok {
		return
	}

	if err := s.rules.Apply(ctx, item); err != nil {
		s.logger.Error("rule evaluation finished with errors",
			zap.String("barcode", barcode),
			zap.Error(err),
		)
	}
}
