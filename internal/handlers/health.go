// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/mfg-erp/internal/pkg/config"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// DatabaseChecker is the part of the database the health checks use.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}

// dependency is one backing service probed by the health endpoints.
// Readiness only waits on the required ones.
type dependency struct {
	name     string
	required bool
	probe    func(ctx context.Context) (map[string]interface{}, error)
}

// HealthHandler reports on postgres, redis and the job queue.
type HealthHandler struct {
	responder
	deps      []dependency
	config    *config.Config
	startTime time.Time
}

// NewHealthHandler creates a new health handler. inspector may be nil, in
// which case the job queue is not probed.
func NewHealthHandler(
	database DatabaseChecker,
	redisClient *redis.Client,
	inspector TaskInspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	h := &HealthHandler{
		responder: responder{logger: logger.With(slog.String("handler", "health"))},
		config:    cfg,
		startTime: time.Now(),
	}

	h.deps = append(h.deps,
		dependency{name: "database", required: true, probe: databaseProbe(database)},
		dependency{name: "redis", required: true, probe: redisProbe(redisClient)},
	)
	if inspector != nil {
		h.deps = append(h.deps, dependency{name: "asynq", probe: queueProbe(inspector)})
	}
	return h
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	System      SystemInfo             `json:"system"`
}

// ServiceInfo is the outcome of one dependency probe.
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo describes the running process.
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	NumGC         uint32 `json:"num_gc"`
}

// ReadinessStatus is the body of GET /health/ready.
type ReadinessStatus struct {
	Ready   bool              `json:"ready"`
	Details map[string]string `json:"details"`
}

// Health handles GET /health. Any failing dependency degrades the service.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := h.probeAll(ctx, h.deps)

	health := HealthStatus{
		Status:      statusHealthy,
		Version:     h.config.App.Version,
		Environment: h.config.App.Environment,
		Uptime:      h.uptime(),
		Timestamp:   time.Now().UTC(),
		Services:    results,
		System:      systemInfo(),
	}
	for _, info := range results {
		if info.Status != statusHealthy {
			health.Status = statusDegraded
		}
	}

	code := http.StatusOK
	if health.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	noStore(w)
	h.respondJSON(w, code, health)
}

// Liveness handles GET /health/live. It never touches a dependency.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": h.uptime(),
	})
}

// Readiness handles GET /health/ready
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var required []dependency
	for _, d := range h.deps {
		if d.required {
			required = append(required, d)
		}
	}

	status := ReadinessStatus{Ready: true, Details: make(map[string]string, len(required))}
	for name, info := range h.probeAll(ctx, required) {
		if info.Status == statusHealthy {
			status.Details[name] = "ready"
			continue
		}
		status.Ready = false
		status.Details[name] = "not ready"
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	noStore(w)
	h.respondJSON(w, code, status)
}

// probeAll runs the probes concurrently.
func (h *HealthHandler) probeAll(ctx context.Context, deps []dependency) map[string]ServiceInfo {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]ServiceInfo, len(deps))
	)
	for _, d := range deps {
		wg.Add(1)
		go func(d dependency) {
			defer wg.Done()

			start := time.Now()
			details, err := d.probe(ctx)
			info := ServiceInfo{Status: statusHealthy, Details: details}
			if err != nil {
				info = ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
				h.logger.ErrorContext(ctx, "health check failed",
					slog.String("dependency", d.name),
					slog.String("error", err.Error()))
			} else {
				info.ResponseTime = time.Since(start).String()
			}

			mu.Lock()
			results[d.name] = info
			mu.Unlock()
		}(d)
	}
	wg.Wait()
	return results
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}

func databaseProbe(database DatabaseChecker) func(context.Context) (map[string]interface{}, error) {
	return func(ctx context.Context) (map[string]interface{}, error) {
		if err := database.Ping(ctx); err != nil {
			return nil, err
		}
		return database.Health(ctx), nil
	}
}

func redisProbe(client *redis.Client) func(context.Context) (map[string]interface{}, error) {
	return func(ctx context.Context) (map[string]interface{}, error) {
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		stats := client.PoolStats()
		return map[string]interface{}{
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
		}, nil
	}
}

// queueProbe reports the backlog of every job queue.
func queueProbe(inspector TaskInspector) func(context.Context) (map[string]interface{}, error) {
	return func(ctx context.Context) (map[string]interface{}, error) {
		queues, err := inspector.Queues()
		if err != nil {
			return nil, err
		}

		backlog := make(map[string]interface{}, len(queues))
		for _, q := range queues {
			info, err := inspector.GetQueueInfo(q)
			if err != nil {
				continue
			}
			backlog[q] = map[string]int{
				"pending":  info.Pending,
				"active":   info.Active,
				"retry":    info.Retry,
				"archived": info.Archived,
			}
		}
		return map[string]interface{}{"queues": backlog}, nil
	}
}

func systemInfo() SystemInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAllocMB: mem.Alloc / 1024 / 1024,
		NumGC:         mem.NumGC,
	}
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
}
