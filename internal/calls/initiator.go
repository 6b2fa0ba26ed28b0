package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"phonecase/internal/cases"
	"phonecase/internal/crm"
)

var ErrNoDestination = errors.New("calls: no destination number")

// CallRequest is a provider-agnostic outbound call.
type CallRequest struct {
	To   string
	From string

	// URL serves the voice markup once the callee answers.
	URL string

	StatusCallback       string
	StatusCallbackEvents []string
}

// Dialer places calls at the provider and returns the provider call id.
type Dialer interface {
	PlaceCall(ctx context.Context, req CallRequest) (string, error)
}

// CaseEnsurer is the part of the reconciler used before dialing.
type CaseEnsurer interface {
	EnsureCase(ctx context.Context, req cases.EnsureRequest) cases.Result
}

type InitiatorConfig struct {
	From      string
	DefaultTo string
	VoiceURL  string
	StatusURL string
}

// Initiator places outbound calls after logging an In Progress Case.
type Initiator struct {
	dialer Dialer
	cases  CaseEnsurer
	cfg    InitiatorConfig
	log    *slog.Logger
}

func NewInitiator(dialer Dialer, ensurer CaseEnsurer, cfg InitiatorConfig, log *slog.Logger) *Initiator {
	if log == nil {
		log = slog.Default()
	}
	return &Initiator{dialer: dialer, cases: ensurer, cfg: cfg, log: log}
}

// PlaceCall dials to, or the default number when to is empty.
// Case reconciliation failures are logged and do not stop the call.
func (i *Initiator) PlaceCall(ctx context.Context, to string) (string, error) {
	if to == "" {
		to = i.cfg.DefaultTo
	}
	if to == "" {
		return "", ErrNoDestination
	}
	if i.dialer == nil {
		return "", errors.New("calls: dialer not configured")
	}

	if i.cases != nil {
		i.cases.EnsureCase(ctx, cases.EnsureRequest{
			Phone:     to,
			Direction: cases.DirectionOutbound,
			Status:    crm.StatusInProgress,
		})
	}

	sid, err := i.dialer.PlaceCall(ctx, CallRequest{
		To:                   to,
		From:                 i.cfg.From,
		URL:                  i.cfg.VoiceURL,
		StatusCallback:       i.cfg.StatusURL,
		StatusCallbackEvents: StatusCallbackEvents,
	})
	if err != nil {
		return "", fmt.Errorf("place call: %w", err)
	}
	i.log.Info("outbound call placed", "to", to, "call_sid", sid)
	return sid, nil
}
