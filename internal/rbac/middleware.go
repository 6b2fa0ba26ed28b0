package rbac

import (
	"net/http"

	"phonecase/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole allows access if the caller has any of the provided roles.
// admin bypasses the check.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "role required"})
			return
		}

		if IsAdmin(role) {
			c.Next()
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			return
		}
		c.Next()
	}
}
