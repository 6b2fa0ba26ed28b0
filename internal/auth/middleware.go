package auth

import (
	"net/http"
	"strings"
	"time"

	"phonecase/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// RequireAccessToken verifies an access token and injects identity into request context.
// Role checks belong to internal/rbac.
func RequireAccessToken(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := m.Verify(tok, time.Now())
		if err != nil {
			logger.FromGin(c).Warn("access token rejected", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), claims.Subject, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Set("subject", claims.Subject)
		c.Set("role", claims.Role)

		c.Next()
	}
}
