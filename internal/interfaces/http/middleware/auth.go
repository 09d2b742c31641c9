package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"singmerge/internal/infrastructure/auth"
	"singmerge/internal/shared/logger"
	"singmerge/internal/shared/utils"
)

// ContextKeySubject holds the subject of the verified token
const ContextKeySubject = "auth_subject"

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireScope rejects requests without a bearer token granting scope.
func (m *AuthMiddleware) RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.VerifyScope(strings.TrimSpace(parts[1]), scope)
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err, "scope", scope)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextKeySubject, claims.Subject)

		c.Next()
	}
}
