package cases

import "phonecase/internal/crm"

// Outcome classifies one reconcile attempt.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeFound    Outcome = "found"
	OutcomeClosed   Outcome = "closed"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
	// OutcomeSkipped means the phone could not key a Case, so the CRM was left alone.
	OutcomeSkipped Outcome = "skipped"
)

// Result is either a Case (Ok) or a failure reason (Err).
// Case is nil for OutcomeNotFound, OutcomeSkipped and OutcomeFailed.
type Result struct {
	Outcome Outcome
	Case    *crm.Case
	Err     error
}

func (r Result) OK() bool { return r.Err == nil }

func ok(o Outcome, c *crm.Case) Result { return Result{Outcome: o, Case: c} }

func skipped() Result { return Result{Outcome: OutcomeSkipped} }

func failed(err error) Result { return Result{Outcome: OutcomeFailed, Err: err} }
