package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"singmerge/internal/infrastructure/ratelimit"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils"
)

// RateLimiter limits API requests per client IP.
// If the backing store fails the request is let through.
type RateLimiter struct {
	limiter ratelimit.Limiter
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.Limiter, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, err := rl.limiter.Allow(c.Request.Context(), "ip:"+clientIP)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request",
				"client_ip", clientIP,
				"error", err,
			)
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", "60")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
