package audit

import "time"

// Event is an immutable record of one reconcile attempt against the CRM.
//
// Invariants:
// - Events are never updated or deleted.
// - Phone is the correlation key; it may be empty when the provider withheld caller id.
// - Recording is best-effort; a failed append never changes a webhook response.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	Phone     string `json:"phone,omitempty" db:"phone"`
	Direction string `json:"direction,omitempty" db:"direction"`
	CaseID    string `json:"case_id,omitempty" db:"case_id"`
	CallSid   string `json:"call_sid,omitempty" db:"call_sid"`

	// Message is a short human-readable description, or the error text for failures.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON, e.g. {"tag":"(Sales)"} for a menu-tagged reconcile.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventCaseCreated     EventType = "case_created"
	EventCaseFound       EventType = "case_found"
	EventCaseClosed      EventType = "case_closed"
	EventCaseNotFound    EventType = "case_not_found"
	EventCaseSkipped     EventType = "case_skipped"
	EventReconcileFailed EventType = "reconcile_failed"
)
