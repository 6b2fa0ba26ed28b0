package calls

// Call is a provider-side call session as reported by webhooks.
// It is never persisted; the Case is the durable record.
type Call struct {
	Sid       string     `json:"sid"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Direction string     `json:"direction,omitempty"`
	Status    CallStatus `json:"status"`
}

// CallStatus uses Twilio's CallStatus spelling.
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCanceled   CallStatus = "canceled"
)

// Terminal reports whether no further status callbacks follow.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusBusy, CallStatusFailed, CallStatusNoAnswer, CallStatusCanceled:
		return true
	default:
		return false
	}
}

// Phone is the number a status event is correlated on: From, or To when From is empty.
func (c Call) Phone() string {
	if c.From != "" {
		return c.From
	}
	return c.To
}

// StatusCallbackEvents are the lifecycle events requested for outbound calls.
var StatusCallbackEvents = []string{"initiated", "ringing", "answered", "completed"}
