package sla

import (
	"time"

	"github.com/parishops/sla-monitor/internal/model"
)

// Classify maps a work item's age to a severity using the category's
// thresholds. Elapsed time is truncated to whole hours, and reaching a
// threshold exactly counts as having crossed it.
func Classify(cfg model.ThresholdConfig, createdAt, now time.Time) model.Severity {
	elapsed := int(now.Sub(createdAt).Hours())
	switch {
	case elapsed >= cfg.CriticalHours:
		return model.SeverityCritical
	case elapsed >= cfg.WarningHours:
		return model.SeverityWarning
	default:
		return model.SeverityOK
	}
}
