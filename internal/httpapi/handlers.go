package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"phonecase/internal/auth"
	"phonecase/internal/reporting"
	"phonecase/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallPlacer starts an outbound call; an empty destination means the default number.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to string) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type ReconcileReporter interface {
	ReconcileSummary(ctx context.Context, req reporting.ReconcileSummaryRequest) (reporting.ReconcileSummary, error)
}

// Handlers groups the internal API handlers.
// Keep these thin: parse input, call internal services, return JSON.
type Handlers struct {
	Calls   CallPlacer
	SMS     SMSSender
	Reports ReconcileReporter
}

type callRequest struct {
	To string `json:"to" form:"to"`
}

type smsRequest struct {
	To      string `json:"to" form:"to"`
	Message string `json:"message" form:"message"`
}

// PlaceCall triggers an outbound call. Failures surface to the caller as 500.
func (h Handlers) PlaceCall(c *gin.Context) {
	if h.Calls == nil {
		fail(c, http.StatusInternalServerError, "calls not configured")
		return
	}
	var req callRequest
	if !bind(c, &req) {
		return
	}

	log := logger.FromGin(c)
	if op, err := auth.Subject(c.Request.Context()); err == nil {
		log = log.With("operator", op)
	}

	sid, err := h.Calls.PlaceCall(c.Request.Context(), strings.TrimSpace(req.To))
	if err != nil {
		log.Error("outbound call failed", "err", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	log.Info("outbound call requested", "call_sid", sid)
	c.JSON(http.StatusOK, gin.H{"success": true, "sid": sid})
}

func (h Handlers) SendSMS(c *gin.Context) {
	if h.SMS == nil {
		fail(c, http.StatusInternalServerError, "sms not configured")
		return
	}
	var req smsRequest
	if !bind(c, &req) {
		return
	}
	if req.To == "" || req.Message == "" {
		fail(c, http.StatusBadRequest, "to and message required")
		return
	}

	sid, err := h.SMS.SendSMS(c.Request.Context(), strings.TrimSpace(req.To), req.Message)
	if err != nil {
		logger.FromGin(c).Error("sms send failed", "err", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sid": sid})
}

// ReconcileReport summarizes reconcile outcomes. from/to are RFC3339; the default is the last 24h.
func (h Handlers) ReconcileReport(c *gin.Context) {
	if h.Reports == nil {
		fail(c, http.StatusInternalServerError, "reporting not configured")
		return
	}

	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			fail(c, http.StatusBadRequest, "from must be RFC3339")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			fail(c, http.StatusBadRequest, "to must be RFC3339")
			return
		}
	}

	out, err := h.Reports.ReconcileSummary(c.Request.Context(), reporting.ReconcileSummaryRequest{
		Range: reporting.TimeRange{From: from, To: to},
	})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		fail(c, http.StatusBadRequest, "invalid range")
		return
	}
	if err != nil {
		logger.FromGin(c).Error("reconcile report failed", "err", err)
		fail(c, http.StatusInternalServerError, "report failed")
		return
	}
	c.JSON(http.StatusOK, out)
}

// bind accepts JSON or form bodies; an empty body binds to the zero value.
func bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBind(dst); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
