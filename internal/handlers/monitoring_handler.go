package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitoringHandler exposes host and database stats for the ops
// dashboard. Prometheus scrapes /metrics for time series; this endpoint
// is the point-in-time snapshot.
type MonitoringHandler struct {
	db        *pgxpool.Pool
	startedAt time.Time
}

type SystemStats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int     `json:"active_connections"`
	ResponseTime      int64   `json:"response_time_ms"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`
	DBSize            string  `json:"db_size"`
	Uptime            string  `json:"uptime"`
}

func NewMonitoringHandler(db *pgxpool.Pool) *MonitoringHandler {
	return &MonitoringHandler{
		db:        db,
		startedAt: time.Now(),
	}
}

func (h *MonitoringHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.collectStats(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *MonitoringHandler) collectStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		DatabaseStatus: "healthy",
		Uptime:         formatDuration(time.Since(h.startedAt)),
	}

	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(dbCtx); err != nil {
		stats.DatabaseStatus = "unhealthy"
	}
	stats.ResponseTime = time.Since(start).Milliseconds()

	if stats.DatabaseStatus == "healthy" {
		h.db.QueryRow(dbCtx,
			"SELECT count(*) FROM pg_stat_activity WHERE state='active'",
		).Scan(&stats.ActiveConnections)

		h.db.QueryRow(dbCtx,
			"SELECT pg_size_pretty(pg_database_size(current_database()))",
		).Scan(&stats.DBSize)
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}

	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}

	return stats
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
