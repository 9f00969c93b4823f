package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchbox/api/middleware"
	"watchbox/api/response"
	"watchbox/config"
	"watchbox/pkg/metrics"
)

// ControllerRegister a controller that mounts its routes on the /api group.
type ControllerRegister interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Router Route configuration
type Router struct {
	engine      *gin.Engine
	config      *config.Config
	metrics     *metrics.Metrics
	controllers []ControllerRegister
}

// NewRouter Create route configuration
func NewRouter(cfg *config.Config, m *metrics.Metrics, controllers ...ControllerRegister) *Router {
	// Set Gin mode based on environment
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Add middleware (order is important)
	engine.Use(middleware.RequestIDMiddleware())                  // 1. Generate request ID first
	engine.Use(middleware.RecoveryMiddleware())                   // 2. Recovery middleware
	engine.Use(middleware.LoggingMiddleware())                    // 3. Logging middleware
	engine.Use(middleware.MetricsMiddleware(m, cfg.Metrics.Path)) // 4. Prometheus
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))              // 5. CORS

	return &Router{
		engine:      engine,
		config:      cfg,
		metrics:     m,
		controllers: controllers,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api")
	for _, c := range r.controllers {
		c.RegisterRoutes(apiGroup)
	}

	if r.config.Metrics.Enabled && r.metrics != nil {
		r.engine.GET(r.config.Metrics.Path, gin.WrapH(r.metrics.Handler()))
	}

	r.engine.GET("/", func(c *gin.Context) {
		response.HandleSuccess(c, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/health",
			"orders":  "/api/submit-order",
		}, "ok")
	})

	r.engine.NoRoute(func(c *gin.Context) {
		response.HandleError(c, fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path),
			"route not found", http.StatusNotFound)
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
