package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/sla"
)

// Health serves a liveness probe
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Diagnostics reports host resource usage and scan bookkeeping for
// operational troubleshooting
func Diagnostics(monitor *sla.Monitor, startedAt time.Time, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := map[string]interface{}{
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"scanning":       monitor.Scanning(),
		}

		if last := monitor.LastCycle(); last != nil {
			out["last_cycle"] = last
		}

		if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
			out["cpu_percent"] = percents[0]
		} else if err != nil {
			logger.Debug("Failed to read CPU usage", zap.Error(err))
		}

		if vm, err := mem.VirtualMemory(); err == nil {
			out["memory_used_percent"] = vm.UsedPercent
		} else {
			logger.Debug("Failed to read memory usage", zap.Error(err))
		}

		RespondJSON(w, http.StatusOK, out)
	}
}
