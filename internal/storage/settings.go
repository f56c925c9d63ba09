package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	settingAlertsEnabled  = "alerts_enabled"
	settingCheckFrequency = "alert_check_frequency_minutes"

	// DefaultCheckFrequencyMinutes is used when no frequency has been stored
	DefaultCheckFrequencyMinutes = 15
)

// getSetting reads one settings row, with found=false when absent
func (s *Store) getSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM sla_settings WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// setSetting upserts one settings row
func (s *Store) setSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sla_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// AlertsEnabled reports whether the alerting pipeline is switched on.
// Defaults to true when unset.
func (s *Store) AlertsEnabled(ctx context.Context) (bool, error) {
	value, found, err := s.getSetting(ctx, settingAlertsEnabled)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	return value == "true", nil
}

// SetAlertsEnabled persists the alerting switch
func (s *Store) SetAlertsEnabled(ctx context.Context, enabled bool) error {
	return s.setSetting(ctx, settingAlertsEnabled, strconv.FormatBool(enabled))
}

// CheckFrequencyMinutes returns the scheduler tick interval in minutes
func (s *Store) CheckFrequencyMinutes(ctx context.Context) (int, error) {
	value, found, err := s.getSetting(ctx, settingCheckFrequency)
	if err != nil {
		return 0, err
	}
	if !found {
		return DefaultCheckFrequencyMinutes, nil
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return DefaultCheckFrequencyMinutes, nil
	}
	return minutes, nil
}

// SetCheckFrequencyMinutes persists the scheduler tick interval
func (s *Store) SetCheckFrequencyMinutes(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("check frequency must be positive, got %d", minutes)
	}
	return s.setSetting(ctx, settingCheckFrequency, strconv.Itoa(minutes))
}
