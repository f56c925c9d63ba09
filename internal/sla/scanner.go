package sla

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// ItemSource supplies pending work items per category. Implementations must
// return items oldest-created-first so alert dispatch and most-critical
// selection stay deterministic.
type ItemSource interface {
	// ListPending returns all items in the category with status pending
	ListPending(ctx context.Context, category model.Category) ([]model.WorkItem, error)

	// MarkAlerted records that an alert was sent for the item
	MarkAlerted(ctx context.Context, category model.Category, id string, at time.Time) error
}

// ItemScanner reads the pending backlog for one category at a time. Reads
// are wrapped in a timeout so one slow query cannot stall the next tick.
type ItemScanner struct {
	logger  *zap.Logger
	source  ItemSource
	timeout time.Duration
}

// NewItemScanner creates a scanner over the given source
func NewItemScanner(source ItemSource, timeout time.Duration, logger *zap.Logger) *ItemScanner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ItemScanner{
		logger:  logger.Named("scanner"),
		source:  source,
		timeout: timeout,
	}
}

// ScanPending returns the pending items for a category, oldest first.
// Source failures and timeouts surface as ErrDataSource; the caller skips
// the category for this cycle and retries on the next one.
func (s *ItemScanner) ScanPending(ctx context.Context, category model.Category) ([]model.WorkItem, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.source.ListPending(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataSource, category, err)
	}

	return items, nil
}
