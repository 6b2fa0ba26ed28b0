package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phonecase/internal/config"

	"github.com/gin-gonic/gin"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:      "secret",
		JWTIssuer:      "issuer",
		JWTAudience:    "aud",
		AccessTokenTTL: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newManager(t)

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "ops-1", "operator")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "ops-1" || claims.Role != "operator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newManager(t)

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "ops-1", "operator")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now.Add(time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	m := newManager(t)
	other, _ := NewManager(config.AuthConfig{JWTSecret: "other", JWTIssuer: "issuer", JWTAudience: "aud", AccessTokenTTL: time.Minute})

	now := time.Now()
	tok, err := other.Issue(now, "ops-1", "operator")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestRequireAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(t)

	r := gin.New()
	r.POST("/call", RequireAccessToken(m), func(c *gin.Context) {
		role, err := Role(c.Request.Context())
		if err != nil {
			t.Errorf("role not propagated: %v", err)
		}
		c.String(http.StatusOK, role)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/call", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	tok, err := m.Issue(time.Now(), "ops-1", "operator")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/call", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "operator" {
		t.Fatalf("expected 200 operator, got %d %q", w.Code, w.Body.String())
	}
}
