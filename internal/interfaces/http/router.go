package http

import (
	"github.com/gin-gonic/gin"

	"singmerge/internal/interfaces/http/handlers"
	"singmerge/internal/interfaces/http/handlers/convert"
	"singmerge/internal/interfaces/http/middleware"
	"singmerge/internal/interfaces/http/routes"
	"singmerge/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine         *gin.Engine
	healthHandler  *handlers.HealthHandler
	convertHandler *convert.Handler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	allowedOrigins []string
	logger         logger.Interface
}

// NewRouter creates a new HTTP router from the container's components
func NewRouter(c *Container, log logger.Interface) *Router {
	return &Router{
		engine:         gin.New(),
		healthHandler:  c.HealthHandler,
		convertHandler: c.ConvertHandler,
		authMiddleware: c.AuthMiddleware,
		rateLimiter:    c.RateLimiter,
		allowedOrigins: c.AllowedOrigins,
		logger:         log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.SecurityHeaders())
	if len(r.allowedOrigins) > 0 {
		r.engine.Use(middleware.CORS(r.allowedOrigins))
	}
	r.engine.Use(middleware.ErrorHandler(r.logger))

	r.engine.GET("/health", r.healthHandler.HealthCheck)

	routes.SetupConvertRoutes(r.engine, &routes.ConvertRouteConfig{
		ConvertHandler: r.convertHandler,
		AuthMiddleware: r.authMiddleware,
		RateLimiter:    r.rateLimiter,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
