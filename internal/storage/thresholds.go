package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/parishops/sla-monitor/internal/model"
)

// GetThresholds returns the persisted thresholds for a category.
// found is false when nothing has been stored yet.
func (s *Store) GetThresholds(ctx context.Context, category model.Category) (model.ThresholdConfig, bool, error) {
	var cfg model.ThresholdConfig
	err := s.db.GetContext(ctx, &cfg,
		"SELECT warning_hours, critical_hours FROM sla_thresholds WHERE category = ?", category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ThresholdConfig{}, false, nil
		}
		return model.ThresholdConfig{}, false, fmt.Errorf("failed to get thresholds: %w", err)
	}
	return cfg, true, nil
}

// UpsertThresholds stores the thresholds for a category
func (s *Store) UpsertThresholds(ctx context.Context, category model.Category, cfg model.ThresholdConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sla_thresholds (category, warning_hours, critical_hours, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			warning_hours = excluded.warning_hours,
			critical_hours = excluded.critical_hours,
			updated_at = excluded.updated_at`,
		category, cfg.WarningHours, cfg.CriticalHours, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert thresholds: %w", err)
	}
	return nil
}
