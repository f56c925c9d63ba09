package sla

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// Monitor states. A cycle runs only when the state moves idle -> scanning;
// a trigger arriving mid-scan is skipped, never queued.
const (
	stateIdle int32 = iota
	stateScanning
)

// Dispatcher sends notifications and records the audit trail for one
// first-time threshold crossing
type Dispatcher interface {
	Dispatch(ctx context.Context, item *model.WorkItem, severity model.Severity) error
}

// SettingsReader exposes the persisted alerting switches
type SettingsReader interface {
	AlertsEnabled(ctx context.Context) (bool, error)
}

// CycleResult summarizes one scan-and-alert cycle
type CycleResult struct {
	StartedAt         time.Time        `json:"started_at"`
	Duration          time.Duration    `json:"duration"`
	Scanned           int              `json:"scanned"`
	Alerted           int              `json:"alerted"`
	SkippedCategories []model.Category `json:"skipped_categories,omitempty"`
}

// Monitor runs the scan -> classify -> dedup -> dispatch pipeline over all
// categories. Both the cron tick and the manual dashboard trigger go through
// RunCycle, so the idle/scanning guard covers every entry point.
type Monitor struct {
	logger     *zap.Logger
	scanner    *ItemScanner
	registry   *ThresholdRegistry
	dedup      *AlertDeduplicator
	dispatcher Dispatcher
	settings   SettingsReader
	now        func() time.Time

	state int32

	mu   sync.RWMutex
	last *CycleResult
}

// NewMonitor creates the scan pipeline driver
func NewMonitor(scanner *ItemScanner, registry *ThresholdRegistry, dedup *AlertDeduplicator, dispatcher Dispatcher, settings SettingsReader, logger *zap.Logger) *Monitor {
	return &Monitor{
		logger:     logger.Named("sla-monitor"),
		scanner:    scanner,
		registry:   registry,
		dedup:      dedup,
		dispatcher: dispatcher,
		settings:   settings,
		now:        time.Now,
	}
}

// Scanning reports whether a cycle is currently running
func (m *Monitor) Scanning() bool {
	return atomic.LoadInt32(&m.state) == stateScanning
}

// LastCycle returns the result of the most recent completed cycle, or nil
// if none has run yet
func (m *Monitor) LastCycle() *CycleResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// RunCycle runs one full scan-and-alert pass across all categories.
// Returns ErrScanInProgress when another cycle holds the guard. Failures
// inside the cycle never abort it: a category that cannot be read is
// skipped, a failed dispatch leaves its item eligible next time, and the
// state always returns to idle.
func (m *Monitor) RunCycle(ctx context.Context) (*CycleResult, error) {
	if !atomic.CompareAndSwapInt32(&m.state, stateIdle, stateScanning) {
		return nil, ErrScanInProgress
	}
	defer atomic.StoreInt32(&m.state, stateIdle)

	enabled, err := m.settings.AlertsEnabled(ctx)
	if err != nil {
		m.logger.Warn("Failed to read alerts_enabled, assuming enabled", zap.Error(err))
		enabled = true
	}
	if !enabled {
		m.logger.Debug("SLA alerts disabled, skipping cycle")
		return &CycleResult{StartedAt: m.now()}, nil
	}

	result := &CycleResult{StartedAt: m.now()}

	for _, category := range model.Categories {
		if err := m.scanCategory(ctx, category, result); err != nil {
			m.logger.Error("Category scan skipped",
				zap.String("category", string(category)),
				zap.Error(err))
			result.SkippedCategories = append(result.SkippedCategories, category)
		}
	}

	result.Duration = m.now().Sub(result.StartedAt)

	m.mu.Lock()
	m.last = result
	m.mu.Unlock()

	m.logger.Info("Scan cycle completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("alerted", result.Alerted),
		zap.Int("skipped_categories", len(result.SkippedCategories)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// scanCategory runs the pipeline for one category
func (m *Monitor) scanCategory(ctx context.Context, category model.Category, result *CycleResult) error {
	cfg, err := m.registry.Thresholds(ctx, category)
	if err != nil {
		return err
	}

	items, err := m.scanner.ScanPending(ctx, category)
	if err != nil {
		return err
	}

	now := m.now()
	result.Scanned += len(items)

	for i := range items {
		item := &items[i]
		severity := Classify(cfg, item.CreatedAt, now)
		if !m.dedup.ShouldAlert(item, severity) {
			continue
		}

		if err := m.dispatcher.Dispatch(ctx, item, severity); err != nil {
			// Item stays un-alerted and is retried on the next cycle.
			m.logger.Error("Alert dispatch failed",
				zap.String("category", string(category)),
				zap.String("item_id", item.ID),
				zap.String("severity", string(severity)),
				zap.Error(err))
			continue
		}

		result.Alerted++
	}

	return nil
}
