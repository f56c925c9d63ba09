package sla

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// ThresholdStore persists per-category SLA thresholds
type ThresholdStore interface {
	// GetThresholds returns the persisted config for a category, with
	// found=false when nothing has been stored yet
	GetThresholds(ctx context.Context, category model.Category) (model.ThresholdConfig, bool, error)

	// UpsertThresholds stores the config for a category
	UpsertThresholds(ctx context.Context, category model.Category, cfg model.ThresholdConfig) error
}

// ThresholdRegistry resolves SLA thresholds per category, falling back to
// built-in defaults when no configuration has been persisted. Updates take
// effect on the next read; nothing is cached across scan cycles.
type ThresholdRegistry struct {
	logger *zap.Logger
	store  ThresholdStore
}

// NewThresholdRegistry creates a registry backed by the given store
func NewThresholdRegistry(store ThresholdStore, logger *zap.Logger) *ThresholdRegistry {
	return &ThresholdRegistry{
		logger: logger.Named("thresholds"),
		store:  store,
	}
}

// Thresholds returns the effective config for a category
func (r *ThresholdRegistry) Thresholds(ctx context.Context, category model.Category) (model.ThresholdConfig, error) {
	if !category.Valid() {
		return model.ThresholdConfig{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	cfg, found, err := r.store.GetThresholds(ctx, category)
	if err != nil {
		return model.ThresholdConfig{}, fmt.Errorf("failed to load thresholds for %s: %w", category, err)
	}
	if !found {
		return model.DefaultThresholds(category), nil
	}
	return cfg, nil
}

// SetThresholds validates and persists new thresholds for a category.
// Invalid values are rejected, never clamped.
func (r *ThresholdRegistry) SetThresholds(ctx context.Context, category model.Category, warningHours, criticalHours int) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	if warningHours <= 0 {
		return fmt.Errorf("%w: warning_hours must be positive, got %d", ErrInvalidThresholds, warningHours)
	}
	if criticalHours <= 0 {
		return fmt.Errorf("%w: critical_hours must be positive, got %d", ErrInvalidThresholds, criticalHours)
	}
	if warningHours >= criticalHours {
		return fmt.Errorf("%w: warning_hours (%d) must be below critical_hours (%d)", ErrInvalidThresholds, warningHours, criticalHours)
	}

	cfg := model.ThresholdConfig{WarningHours: warningHours, CriticalHours: criticalHours}
	if err := r.store.UpsertThresholds(ctx, category, cfg); err != nil {
		return fmt.Errorf("failed to persist thresholds for %s: %w", category, err)
	}

	r.logger.Info("Updated SLA thresholds",
		zap.String("category", string(category)),
		zap.Int("warning_hours", warningHours),
		zap.Int("critical_hours", criticalHours))

	return nil
}
