package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"syscall"
	"time"

	"github.com/taiwanleaftea/ceca-bank-payments/infra/response"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

// Version is reported by the health endpoint
var Version = "dev"

// Pinger checks one backing service
type Pinger func(ctx context.Context) error

// Dependency is a backing service the health check pings. Optional services
// only degrade the status when they fail.
type Dependency struct {
	Name     string
	Ping     Pinger
	Critical bool
}

// GatewayLister lists the configured gateways
type GatewayLister interface {
	Gateways() []provider.GatewayInfo
}

// HealthHandler handles health check requests
type HealthHandler struct {
	gateways     GatewayLister
	dependencies []Dependency
	startTime    time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status    string                    `json:"status"`
	Version   string                    `json:"version"`
	Timestamp time.Time                 `json:"timestamp"`
	Uptime    string                    `json:"uptime"`
	Gateways  []provider.GatewayInfo    `json:"gateways"`
	Services  map[string]*ServiceHealth `json:"services"`
	System    *SystemHealth             `json:"system"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status       string `json:"status"`
	Healthy      bool   `json:"healthy"`
	Critical     bool   `json:"critical"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// SystemHealth represents system resource health
type SystemHealth struct {
	Memory     *MemoryHealth `json:"memory"`
	Disk       *DiskHealth   `json:"disk"`
	GoRoutines int           `json:"goroutines"`
}

// MemoryHealth represents memory usage
type MemoryHealth struct {
	Alloc        string  `json:"alloc"`
	Sys          string  `json:"sys"`
	GCRuns       uint32  `json:"gc_runs"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskHealth represents disk usage
type DiskHealth struct {
	Available    string  `json:"available"`
	Total        string  `json:"total"`
	UsagePercent float64 `json:"usage_percent"`
	Status       string  `json:"status"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gateways GatewayLister, dependencies ...Dependency) *HealthHandler {
	return &HealthHandler{
		gateways:     gateways,
		dependencies: dependencies,
		startTime:    time.Now(),
	}
}

// CheckHealth pings every dependency and reports the overall status
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Services:  h.checkServicesHealth(ctx),
		System:    checkSystemHealth(),
	}
	if h.gateways != nil {
		health.Gateways = h.gateways.Gateways()
	}

	health.Status = determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

// checkServicesHealth pings every dependency concurrently
func (h *HealthHandler) checkServicesHealth(ctx context.Context) map[string]*ServiceHealth {
	services := make(map[string]*ServiceHealth, len(h.dependencies))
	results := make(chan struct {
		name   string
		health *ServiceHealth
	}, len(h.dependencies))

	for _, dep := range h.dependencies {
		go func(dep Dependency) {
			start := time.Now()
			err := dep.Ping(ctx)
			sh := &ServiceHealth{
				Status:       "healthy",
				Healthy:      err == nil,
				Critical:     dep.Critical,
				ResponseTime: time.Since(start).String(),
			}
			if err != nil {
				sh.Status = "unhealthy"
				sh.Error = err.Error()
			}
			results <- struct {
				name   string
				health *ServiceHealth
			}{dep.Name, sh}
		}(dep)
	}

	for range h.dependencies {
		res := <-results
		services[res.name] = res.health
	}

	return services
}

// determineOverallStatus determines overall system status
func determineOverallStatus(health *HealthStatus) string {
	degraded := false
	for _, service := range health.Services {
		if service.Healthy {
			continue
		}
		if service.Critical {
			return "unhealthy"
		}
		degraded = true
	}

	enabled := 0
	for _, g := range health.Gateways {
		if g.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		degraded = true
	}

	if health.System != nil && health.System.Disk != nil && health.System.Disk.UsagePercent > 90 {
		degraded = true
	}

	if degraded {
		return "degraded"
	}
	return "healthy"
}

// checkSystemHealth checks system resource health
func checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Memory: &MemoryHealth{
			Alloc:        formatBytes(memStats.Alloc),
			Sys:          formatBytes(memStats.Sys),
			GCRuns:       memStats.NumGC,
			UsagePercent: float64(memStats.Alloc) / float64(memStats.Sys) * 100,
		},
		Disk:       getDiskUsage("/"),
		GoRoutines: runtime.NumGoroutine(),
	}
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// getDiskUsage reports usage of the filesystem holding path
func getDiskUsage(path string) *DiskHealth {
	disk := &DiskHealth{Status: "unknown"}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		disk.Status = "error"
		return disk
	}

	available := stat.Bavail * uint64(stat.Bsize)
	total := stat.Blocks * uint64(stat.Bsize)
	if total == 0 {
		return disk
	}
	used := total - stat.Bfree*uint64(stat.Bsize)

	disk.Available = formatBytes(available)
	disk.Total = formatBytes(total)
	disk.UsagePercent = float64(used) / float64(total) * 100

	switch {
	case disk.UsagePercent > 90:
		disk.Status = "critical"
	case disk.UsagePercent > 80:
		disk.Status = "warning"
	default:
		disk.Status = "healthy"
	}

	return disk
}
