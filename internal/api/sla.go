package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
	"github.com/parishops/sla-monitor/internal/sla"
)

// AlertLog reads the alert audit trail
type AlertLog interface {
	RecentAlerts(ctx context.Context, limit int) ([]model.AlertRecord, error)
}

// SLAStatus serves the dashboard snapshot. Read-only and side-effect free,
// so clients may poll it as often as they like.
func SLAStatus(builder *sla.SnapshotBuilder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := builder.BuildSnapshot(r.Context(), time.Now())
		if err != nil {
			logger.Error("Failed to build snapshot", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "failed to build SLA snapshot")
			return
		}
		RespondJSON(w, http.StatusOK, snapshot)
	}
}

// RecentAlerts serves the newest audit trail entries
func RecentAlerts(log AlertLog, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		records, err := log.RecentAlerts(r.Context(), limit)
		if err != nil {
			logger.Error("Failed to list alert records", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "failed to list alerts")
			return
		}
		if records == nil {
			records = []model.AlertRecord{}
		}
		RespondJSON(w, http.StatusOK, map[string]interface{}{"alerts": records})
	}
}

// TriggerCheck runs a scan cycle on demand. It shares the idle/scanning
// guard with the background scheduler, so it can never overlap a timed run.
func TriggerCheck(monitor *sla.Monitor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := monitor.RunCycle(r.Context())
		if err != nil {
			if errors.Is(err, sla.ErrScanInProgress) {
				RespondError(w, http.StatusConflict, "a scan cycle is already running")
				return
			}
			logger.Error("Manual scan cycle failed", zap.Error(err))
			RespondError(w, http.StatusInternalServerError, "scan cycle failed")
			return
		}
		RespondJSON(w, http.StatusOK, result)
	}
}
