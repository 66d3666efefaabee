package health

import (
	"context"
	"database/sql"
	"runtime"
	"time"
)

// Checker reports database reachability and runtime stats
type Checker struct {
	db *sql.DB
}

type Status struct {
	Status     string         `json:"status"`
	Database   DatabaseHealth `json:"database"`
	Goroutines int            `json:"goroutines"`
	Memory     MemoryStats    `json:"memory"`
}

type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewChecker(db *sql.DB) *Checker {
	return &Checker{db: db}
}

// Healthy reports whether s should be served with 200
func (s Status) Healthy() bool {
	return s.Status == "healthy"
}

func (h *Checker) Check(ctx context.Context) Status {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return Status{
		Status:     status,
		Database:   dbHealth,
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			AllocMB:      float64(memStats.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(memStats.Sys) / 1024 / 1024,
			NumGC:        memStats.NumGC,
		},
	}
}

func (h *Checker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return DatabaseHealth{Status: "healthy", ResponseTime: responseTime}
}
