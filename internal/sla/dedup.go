package sla

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// AlertDeduplicator decides whether an item needs a first-time alert and
// records the alerted state. A single alert_sent flag per item means an item
// already alerted at warning is not alerted again when it escalates to
// critical; once the item leaves pending it drops out of scope entirely.
type AlertDeduplicator struct {
	logger *zap.Logger
	source ItemSource
	now    func() time.Time
}

// NewAlertDeduplicator creates a deduplicator backed by the given source
func NewAlertDeduplicator(source ItemSource, logger *zap.Logger) *AlertDeduplicator {
	return &AlertDeduplicator{
		logger: logger.Named("dedup"),
		source: source,
		now:    time.Now,
	}
}

// ShouldAlert reports whether the item is a first-time threshold crossing
func (d *AlertDeduplicator) ShouldAlert(item *model.WorkItem, severity model.Severity) bool {
	return !item.AlertSent && severity != model.SeverityOK
}

// MarkAlerted sets alert_sent on the item. Marking an already-alerted item
// is a no-op rewrite of the same state, never an error. A failed write
// surfaces as ErrPersistence and leaves the item eligible on the next scan.
func (d *AlertDeduplicator) MarkAlerted(ctx context.Context, item *model.WorkItem) error {
	at := d.now()
	if err := d.source.MarkAlerted(ctx, item.Category, item.ID, at); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrPersistence, item.Category, item.ID, err)
	}

	item.AlertSent = true
	item.AlertSentAt = &at

	d.logger.Debug("Marked item alerted",
		zap.String("category", string(item.Category)),
		zap.String("item_id", item.ID))

	return nil
}
