package main

import (
	"database/sql"
	"net/http"
	"time"

	"phonecase/internal/httpapi"
	"phonecase/internal/ivr"
	"phonecase/internal/rbac"
	"phonecase/internal/telephony"
	"phonecase/pkg/utils"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Webhooks telephony.WebhookHandler
	Calls    httpapi.CallPlacer
	SMS      httpapi.SMSSender
	Reports  httpapi.ReconcileReporter

	// Signature guards provider webhooks; nil disables the check.
	Signature gin.HandlerFunc
	// Auth guards the internal API; nil leaves it open.
	Auth gin.HandlerFunc

	DB *sql.DB
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if d.DB != nil {
			if err := utils.PingPostgres(c.Request.Context(), d.DB, 2*time.Second); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "audit store unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks. Always 200 once past the signature check.
	provider := r.Group("/")
	if d.Signature != nil {
		provider.Use(d.Signature)
	}
	{
		provider.POST(ivr.MenuPath, d.Webhooks.HandleVoice)
		provider.POST("/ivr", d.Webhooks.HandleVoice)
		provider.POST(ivr.GatherPath, d.Webhooks.HandleGather)
		provider.POST("/status", d.Webhooks.HandleStatus)
	}

	// Internal API
	h := httpapi.Handlers{Calls: d.Calls, SMS: d.SMS, Reports: d.Reports}
	internal := r.Group("/")
	if d.Auth != nil {
		internal.Use(d.Auth, rbac.RequireAnyRole(rbac.RoleOperator))
	}
	{
		internal.POST("/call", h.PlaceCall)
		internal.POST("/sms", h.SendSMS)
	}

	reports := r.Group("/reports")
	if d.Auth != nil {
		reports.Use(d.Auth, rbac.RequireAnyRole(rbac.RoleAdmin))
	}
	{
		reports.GET("/reconcile", h.ReconcileReport)
	}
}
