package telephony

import (
	"net/http"
	"strings"

	"phonecase/internal/calls"
)

// VoiceWebhook captures the subset of Twilio voice webhook fields we care about.
// Twilio sends application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/usage/webhooks/voice-webhooks
type VoiceWebhook struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	Direction  string
	CallStatus string
	Digits     string
}

func ParseVoiceWebhook(r *http.Request) (VoiceWebhook, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceWebhook{}, err
	}
	return VoiceWebhook{
		CallSid:    r.PostFormValue("CallSid"),
		AccountSid: r.PostFormValue("AccountSid"),
		From:       trimPhone(r.PostFormValue("From")),
		To:         trimPhone(r.PostFormValue("To")),
		Direction:  r.PostFormValue("Direction"),
		CallStatus: strings.ToLower(strings.TrimSpace(r.PostFormValue("CallStatus"))),
		Digits:     strings.TrimSpace(r.PostFormValue("Digits")),
	}, nil
}

func trimPhone(s string) string {
	// Withheld caller ids arrive as "anonymous" or empty; the reconciler skips those.
	return strings.TrimSpace(s)
}

func (w VoiceWebhook) Call() calls.Call {
	return calls.Call{
		Sid:       w.CallSid,
		From:      w.From,
		To:        w.To,
		Direction: w.Direction,
		Status:    calls.CallStatus(w.CallStatus),
	}
}
