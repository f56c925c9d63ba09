package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
	"github.com/parishops/sla-monitor/internal/sla"
)

// SettingsStore persists the alerting switches consumed by the scheduler
type SettingsStore interface {
	AlertsEnabled(ctx context.Context) (bool, error)
	SetAlertsEnabled(ctx context.Context, enabled bool) error
	CheckFrequencyMinutes(ctx context.Context) (int, error)
	SetCheckFrequencyMinutes(ctx context.Context, minutes int) error
}

// Rescheduler lets a settings update change the scan interval immediately
type Rescheduler interface {
	Reschedule(minutes int) error
}

// slaSettings is the wire shape of the administrative settings surface
type slaSettings struct {
	AlertsEnabled              bool                                         `json:"alerts_enabled"`
	AlertCheckFrequencyMinutes int                                          `json:"alert_check_frequency_minutes"`
	Thresholds                 map[model.Category]*model.ThresholdConfig `json:"thresholds"`
}

// GetSettings serves the current SLA configuration
func GetSettings(registry *sla.ThresholdRegistry, settings SettingsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		enabled, err := settings.AlertsEnabled(ctx)
		if err != nil {
			logger.Error("Failed to read settings", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "failed to read settings")
			return
		}
		minutes, err := settings.CheckFrequencyMinutes(ctx)
		if err != nil {
			logger.Error("Failed to read settings", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "failed to read settings")
			return
		}

		out := slaSettings{
			AlertsEnabled:              enabled,
			AlertCheckFrequencyMinutes: minutes,
			Thresholds:                 make(map[model.Category]*model.ThresholdConfig, len(model.Categories)),
		}
		for _, category := range model.Categories {
			cfg, err := registry.Thresholds(ctx, category)
			if err != nil {
				logger.Error("Failed to read thresholds",
					zap.String("category", string(category)),
					zap.Error(err))
				RespondError(w, http.StatusInternalServerError, "failed to read thresholds")
				return
			}
			out.Thresholds[category] = &model.ThresholdConfig{
				WarningHours:  cfg.WarningHours,
				CriticalHours: cfg.CriticalHours,
			}
		}

		RespondJSON(w, http.StatusOK, out)
	}
}

// UpdateSettings validates and applies a new SLA configuration. Invalid
// thresholds are rejected outright, never clamped.
func UpdateSettings(registry *sla.ThresholdRegistry, settings SettingsStore, sched Rescheduler, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in slaSettings
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if in.AlertCheckFrequencyMinutes <= 0 {
			RespondError(w, http.StatusBadRequest, "alert_check_frequency_minutes must be positive")
			return
		}

		// Validate every threshold before persisting any of them.
		for category, cfg := range in.Thresholds {
			if cfg == nil {
				continue
			}
			if !category.Valid() {
				RespondError(w, http.StatusBadRequest, "unknown category: "+string(category))
				return
			}
			if cfg.WarningHours <= 0 || cfg.CriticalHours <= 0 || cfg.WarningHours >= cfg.CriticalHours {
				RespondError(w, http.StatusBadRequest,
					"warning_hours must be positive and below critical_hours for "+string(category))
				return
			}
		}

		for category, cfg := range in.Thresholds {
			if cfg == nil {
				continue
			}
			if err := registry.SetThresholds(ctx, category, cfg.WarningHours, cfg.CriticalHours); err != nil {
				if errors.Is(err, sla.ErrInvalidThresholds) {
					RespondError(w, http.StatusBadRequest, err.Error())
					return
				}
				logger.Error("Failed to persist thresholds", zap.Error(err))
				RespondError(w, http.StatusInternalServerError, "failed to persist thresholds")
				return
			}
		}

		if err := settings.SetAlertsEnabled(ctx, in.AlertsEnabled); err != nil {
			logger.Error("Failed to persist settings", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "failed to persist settings")
			return
		}
		if err := settings.SetCheckFrequencyMinutes(ctx, in.AlertCheckFrequencyMinutes); err != nil {
			logger.Error("Failed to persist settings", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "failed to persist settings")
			return
		}

		if sched != nil {
			if err := sched.Reschedule(in.AlertCheckFrequencyMinutes); err != nil {
				logger.Error("Failed to reschedule SLA checks", zap.Error(err))
			}
		}

		RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}
