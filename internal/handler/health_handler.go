package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthCheckTimeout = 2 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

// QueueLength reports the backlog of a worker queue.
type QueueLength func(ctx context.Context) (int64, error)

// HealthHandler reports liveness together with dependency checks and a few
// runtime figures.
type HealthHandler struct {
	checks    map[string]Check
	queue     QueueLength
	startTime time.Time
	log       zerolog.Logger
}

func NewHealthHandler(checks map[string]Check, queue QueueLength, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		queue:     queue,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

type healthReport struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	HeapAlloc  uint64            `json:"heap_alloc"`
	GoVersion  string            `json:"go_version"`
	// WarmQueue is the number of quizzes waiting for the cache worker.
	WarmQueue *int64 `json:"warm_queue,omitempty"`
}

// Health godoc
// GET /health
// 200 when every dependency answers, 503 otherwise. The body is not wrapped
// in the response envelope so load balancers can read it as is.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	report := healthReport{
		Status:     "ok",
		Checks:     make(map[string]string, len(h.checks)),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		GoVersion:  runtime.Version(),
	}

	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			report.Checks[name] = err.Error()
			report.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		report.Checks[name] = "ok"
	}

	if h.queue != nil {
		if n, err := h.queue(ctx); err == nil {
			report.WarmQueue = &n
		}
	}

	c.JSON(status, report)
}
