package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"phonecase/internal/audit"
	"phonecase/internal/crm"
)

// Direction is the call direction recorded on a Case subject.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Store is the CRM surface the reconciler needs.
type Store interface {
	FindCaseByPhone(ctx context.Context, phone string) (*crm.Case, error)
	CreateCase(ctx context.Context, in crm.NewCase) (crm.Case, error)
	UpdateCaseStatus(ctx context.Context, id string, status crm.Status) error
}

// Recorder receives every reconcile outcome.
type Recorder interface {
	Append(ctx context.Context, e audit.Event) error
}

// EnsureRequest describes a call that should have a Case.
type EnsureRequest struct {
	Phone     string
	Direction Direction
	// Status defaults to crm.StatusNew.
	Status crm.Status
	// Tag is appended to subject and description on create, e.g. "(Sales)".
	Tag     string
	CallSid string
}

// Reconciler keeps CRM Cases in step with call events using phone number as the key.
//
// Lookup and create are not atomic: two overlapping calls from one number
// can both miss and both create.
type Reconciler struct {
	store    Store
	recorder Recorder
	log      *slog.Logger
}

func NewReconciler(store Store, recorder Recorder, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{store: store, recorder: recorder, log: log}
}

// EnsureCase returns the existing Case for the phone, or creates one.
// An existing Case is returned as is; Tag and Status are not applied to it.
// A phone that cannot key a Case (blank, or "anonymous" under normalized
// matching) is skipped so repeated webhooks do not pile up orphan Cases.
func (r *Reconciler) EnsureCase(ctx context.Context, req EnsureRequest) Result {
	if req.Status == "" {
		req.Status = crm.StatusNew
	}
	log := r.log.With("phone", req.Phone, "direction", string(req.Direction))

	res := r.ensure(ctx, req)
	switch res.Outcome {
	case OutcomeCreated:
		log.Info("created crm case", "case_id", res.Case.ID, "status", string(res.Case.Status))
	case OutcomeFound:
		log.Info("crm case already exists", "case_id", res.Case.ID)
	case OutcomeSkipped:
		log.Warn("caller phone cannot key a crm case; skipping")
	case OutcomeFailed:
		log.Error("crm case reconcile failed", "err", res.Err)
	}
	r.record(ctx, req.Phone, string(req.Direction), req.CallSid, req.Tag, res)
	return res
}

func (r *Reconciler) ensure(ctx context.Context, req EnsureRequest) Result {
	if r.store == nil {
		return failed(errors.New("cases: crm store not configured"))
	}

	if strings.TrimSpace(req.Phone) == "" {
		return skipped()
	}

	existing, err := r.store.FindCaseByPhone(ctx, req.Phone)
	if errors.Is(err, crm.ErrUnkeyablePhone) {
		return skipped()
	}
	if err != nil {
		return failed(err)
	}
	if existing != nil {
		return ok(OutcomeFound, existing)
	}

	created, err := r.store.CreateCase(ctx, crm.NewCase{
		Subject:     subject(req),
		Description: description(req),
		Status:      req.Status,
		Origin:      crm.OriginPhone,
		Phone:       req.Phone,
	})
	if err != nil {
		return failed(err)
	}
	return ok(OutcomeCreated, &created)
}

// CloseOnCompletion closes the Case for phone. No matching Case is a no-op.
func (r *Reconciler) CloseOnCompletion(ctx context.Context, phone, callSid string) Result {
	log := r.log.With("phone", phone)

	res := r.close(ctx, phone)
	switch res.Outcome {
	case OutcomeClosed:
		log.Info("closed crm case", "case_id", res.Case.ID)
	case OutcomeNotFound:
		log.Debug("no crm case to close")
	case OutcomeSkipped:
		log.Debug("caller phone cannot key a crm case; nothing to close")
	case OutcomeFailed:
		log.Error("crm case close failed", "err", res.Err)
	}
	r.record(ctx, phone, "", callSid, "", res)
	return res
}

func (r *Reconciler) close(ctx context.Context, phone string) Result {
	if r.store == nil {
		return failed(errors.New("cases: crm store not configured"))
	}

	if strings.TrimSpace(phone) == "" {
		return skipped()
	}

	existing, err := r.store.FindCaseByPhone(ctx, phone)
	if errors.Is(err, crm.ErrUnkeyablePhone) {
		return skipped()
	}
	if err != nil {
		return failed(err)
	}
	if existing == nil {
		return ok(OutcomeNotFound, nil)
	}
	if err := r.store.UpdateCaseStatus(ctx, existing.ID, crm.StatusClosed); err != nil {
		return failed(err)
	}
	closed := *existing
	closed.Status = crm.StatusClosed
	return ok(OutcomeClosed, &closed)
}

func (r *Reconciler) record(ctx context.Context, phone, direction, callSid, tag string, res Result) {
	if r.recorder == nil {
		return
	}
	e := audit.Event{
		Type:      eventType(res.Outcome),
		Phone:     phone,
		Direction: direction,
		CallSid:   callSid,
	}
	if res.Case != nil {
		e.CaseID = res.Case.ID
	}
	if res.Err != nil {
		e.Message = res.Err.Error()
	}
	if tag != "" {
		if raw, err := json.Marshal(eventMetadata{Tag: tag}); err == nil {
			e.Metadata = string(raw)
		}
	}
	if err := r.recorder.Append(ctx, e); err != nil {
		r.log.Warn("audit append failed", "err", err, "type", string(e.Type))
	}
}

// eventMetadata is stored as the audit event's JSON metadata.
type eventMetadata struct {
	Tag string `json:"tag,omitempty"`
}

func eventType(o Outcome) audit.EventType {
	switch o {
	case OutcomeCreated:
		return audit.EventCaseCreated
	case OutcomeFound:
		return audit.EventCaseFound
	case OutcomeClosed:
		return audit.EventCaseClosed
	case OutcomeNotFound:
		return audit.EventCaseNotFound
	case OutcomeSkipped:
		return audit.EventCaseSkipped
	default:
		return audit.EventReconcileFailed
	}
}

func subject(req EnsureRequest) string {
	return strings.TrimSpace(fmt.Sprintf("New %s call from %s %s", req.Direction, req.Phone, req.Tag))
}

func description(req EnsureRequest) string {
	return strings.TrimSpace(fmt.Sprintf("Auto-logged %s call via Twilio middleware %s", req.Direction, req.Tag))
}
