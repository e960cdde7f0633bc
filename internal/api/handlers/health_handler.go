package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service and host status.
type HealthHandler struct {
	db      Pinger
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// HostStats are best-effort host metrics.
type HostStats struct {
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	MemoryTotal       uint64  `json:"memoryTotal"`
	Load1             float64 `json:"load1"`
	Load5             float64 `json:"load5"`
	Load15            float64 `json:"load15"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database"`
	Uptime   string     `json:"uptime"`
	Host     *HostStats `json:"host,omitempty"`
}

// Get responds 200 when the store answers a ping, 503 otherwise.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Host:     hostStats(ctx),
	}
	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Health check database ping failed")
		resp.Status, resp.Database = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

func hostStats(ctx context.Context) *HostStats {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Host memory stats unavailable")
		return nil
	}
	stats := &HostStats{MemoryUsedPercent: vm.UsedPercent, MemoryTotal: vm.Total}
	// load averages are not available on every platform
	if avg, err := load.AvgWithContext(ctx); err == nil {
		stats.Load1, stats.Load5, stats.Load15 = avg.Load1, avg.Load5, avg.Load15
	}
	return stats
}
