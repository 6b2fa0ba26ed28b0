package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"phonecase/internal/auth"

	"github.com/gin-gonic/gin"
)

func serveWithRole(role string, allowed ...string) int {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		if role != "" {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), "u", role))
		}
		c.Next()
	}, RequireAnyRole(RoleOperator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	return w.Code
}

func TestRequireAnyRole_OperatorAllowed(t *testing.T) {
	if code := serveWithRole(RoleOperator); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_AdminBypasses(t *testing.T) {
	if code := serveWithRole(RoleAdmin); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAnyRole_UnknownRoleForbidden(t *testing.T) {
	if code := serveWithRole("viewer"); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_MissingIdentity(t *testing.T) {
	if code := serveWithRole(""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
