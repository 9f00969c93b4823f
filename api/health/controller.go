package health

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"watchbox/api/response"
	"watchbox/config"
	"watchbox/domain/shared"
)

const checkTimeout = 2 * time.Second

// Pinger a dependency the service needs to be ready, e.g. the idempotency store.
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

// Controller Health check controller
type Controller struct {
	config    *config.Config
	pingers   []Pinger
	startTime time.Time
}

// NewController Create health check controller
func NewController(cfg *config.Config, pingers ...Pinger) *Controller {
	return &Controller{
		config:    cfg,
		pingers:   pingers,
		startTime: time.Now(),
	}
}

// RegisterRoutes Register health check routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

// HealthResponse Health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Sinks     map[string]bool  `json:"sinks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check Check item
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo System information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health Complete health check
// Sinks 只报告是否配置；表格和邮件不影响健康状态
func (c *Controller) Health(ctx *gin.Context) {
	checks := c.runChecks(ctx.Request.Context())
	overallStatus := "healthy"
	for _, check := range checks {
		if check.Status != "healthy" {
			overallStatus = "unhealthy"
		}
	}

	resp := HealthResponse{
		Status:    overallStatus,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Sinks: map[string]bool{
			"sheets": c.config.Sheets.SheetsConfigured(),
			"mail":   c.config.SMTP.MailConfigured(),
		},
	}

	// Only expose system info in development mode
	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		resp.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	ctx.JSON(statusCode, resp)
}

// Liveness Liveness check (Kubernetes liveness probe)
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Readiness Readiness check (Kubernetes readiness probe)
func (c *Controller) Readiness(ctx *gin.Context) {
	for _, p := range c.pingers {
		if check := ping(ctx.Request.Context(), p); check.Status != "healthy" {
			response.HandleAppError(ctx, shared.NewUnavailableError(p.Name(), errors.New(check.Message)))
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

func (c *Controller) runChecks(ctx context.Context) map[string]Check {
	checks := make(map[string]Check, len(c.pingers))
	for _, p := range c.pingers {
		checks[p.Name()] = ping(ctx, p)
	}
	return checks
}

func ping(ctx context.Context, p Pinger) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
