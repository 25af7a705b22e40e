package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/jlmoreno/cartera/internal/database"
)

// SystemHandlers serves liveness and host metrics endpoints.
type SystemHandlers struct {
	databases []*database.DB
	dataDir   string
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers over the given databases.
func NewSystemHandlers(databases []*database.DB, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		dataDir:   dataDir,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth reports liveness plus per-database integrity.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	databases := make(map[string]string, len(h.databases))

	for _, db := range h.databases {
		if err := db.HealthCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			databases[db.Name()] = err.Error()
			status = "degraded"
		} else {
			databases[db.Name()] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"databases":      databases,
	})
}

// HandleSystemInfo reports host CPU, memory, and disk usage.
func (h *SystemHandlers) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}

	// 100ms sample keeps the endpoint responsive for dashboard polling
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		info["cpu_percent"] = cpuPercent[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		info["memory_percent"] = memStat.UsedPercent
		info["memory_used_mb"] = memStat.Used / 1024 / 1024
		info["memory_total_mb"] = memStat.Total / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	if diskStat, err := disk.Usage(h.dataDir); err == nil {
		info["disk_percent"] = diskStat.UsedPercent
		info["disk_free_mb"] = diskStat.Free / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to read disk usage")
	}

	h.writeJSON(w, http.StatusOK, info)
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
