package telephony

import (
	"context"
	"net/http"

	"phonecase/internal/calls"
	"phonecase/internal/cases"
	"phonecase/internal/crm"
	"phonecase/internal/ivr"
	"phonecase/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CaseReconciler is the reconcile surface the webhooks drive.
type CaseReconciler interface {
	EnsureCase(ctx context.Context, req cases.EnsureRequest) cases.Result
	CloseOnCompletion(ctx context.Context, phone, callSid string) cases.Result
}

// WebhookHandler converts Twilio webhooks to IVR transitions and Case updates.
//
// Every provider request is answered 200: a non-200 makes Twilio replay the step.
// CRM failures are logged and recorded by the reconciler, never surfaced here.
type WebhookHandler struct {
	Cases     CaseReconciler
	Directory ivr.Directory
}

// HandleVoice serves the menu root (/voice and /ivr).
func (h WebhookHandler) HandleVoice(c *gin.Context) {
	h.handleIVR(c, ivr.MenuRoot)
}

// HandleGather interprets the digit pressed at the menu.
func (h WebhookHandler) HandleGather(c *gin.Context) {
	h.handleIVR(c, ivr.AwaitingDigit)
}

func (h WebhookHandler) handleIVR(c *gin.Context, state ivr.State) {
	log := logger.FromGin(c)

	form, err := ParseVoiceWebhook(c.Request)
	if err != nil {
		log.Warn("twilio webhook parse failed", "err", err)
	}

	step := ivr.Transition(state, ivr.Input{Digits: form.Digits}, h.Directory)
	log.Debug("ivr transition", "from", string(state), "to", string(step.State), "digits", form.Digits)

	if step.Effect.Kind == ivr.EffectReconcile && h.Cases != nil {
		h.Cases.EnsureCase(c.Request.Context(), cases.EnsureRequest{
			Phone:     form.From,
			Direction: cases.DirectionInbound,
			Status:    crm.StatusNew,
			Tag:       step.Effect.Tag,
			CallSid:   form.CallSid,
		})
	}

	body, err := RenderStep(step)
	if err != nil {
		log.Error("twiml render failed", "err", err, "state", string(step.State))
		body = emptyTwiML
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(body))
}

// HandleStatus receives call lifecycle callbacks and closes the Case on completion.
func (h WebhookHandler) HandleStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseVoiceWebhook(c.Request)
	if err != nil {
		log.Warn("twilio status parse failed", "err", err)
		c.Status(http.StatusOK)
		return
	}

	call := form.Call()
	log.Info("call status update", "call_sid", call.Sid, "status", string(call.Status), "terminal", call.Status.Terminal())

	if call.Status == calls.CallStatusCompleted && h.Cases != nil {
		h.Cases.CloseOnCompletion(c.Request.Context(), call.Phone(), call.Sid)
	}
	c.Status(http.StatusOK)
}
