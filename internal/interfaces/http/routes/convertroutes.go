package routes

import (
	"github.com/gin-gonic/gin"

	"singmerge/internal/infrastructure/auth"
	"singmerge/internal/interfaces/http/handlers/convert"
	"singmerge/internal/interfaces/http/middleware"
)

// ConvertRouteConfig holds dependencies for conversion routes.
type ConvertRouteConfig struct {
	ConvertHandler *convert.Handler
	AuthMiddleware *middleware.AuthMiddleware // nil leaves publishing unauthenticated
	RateLimiter    *middleware.RateLimiter    // nil disables rate limiting
}

// SetupConvertRoutes configures conversion and publish routes.
func SetupConvertRoutes(engine *gin.Engine, cfg *ConvertRouteConfig) {
	v1 := engine.Group("/api/v1")
	v1.Use(middleware.APIVersion())
	if cfg.RateLimiter != nil {
		v1.Use(cfg.RateLimiter.Limit())
	}
	{
		v1.POST("/convert", cfg.ConvertHandler.Merge)
		v1.POST("/convert/:format", cfg.ConvertHandler.Render)

		if cfg.ConvertHandler.PublishEnabled() {
			publish := []gin.HandlerFunc{cfg.ConvertHandler.Publish}
			if cfg.AuthMiddleware != nil {
				publish = append([]gin.HandlerFunc{cfg.AuthMiddleware.RequireScope(auth.ScopePublish)}, publish...)
			}
			v1.POST("/publish", publish...)
		}
	}
}
