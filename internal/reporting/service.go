package reporting

import (
	"context"
	"errors"
	"time"

	"phonecase/internal/audit"
	"phonecase/internal/cases"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository reads the immutable reconcile log.
type Repository interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]audit.Event, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) ReconcileSummary(ctx context.Context, req ReconcileSummaryRequest) (ReconcileSummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return ReconcileSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return ReconcileSummary{}, errors.New("reporting: repository not configured")
	}

	events, err := s.repo.ListEvents(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return ReconcileSummary{}, err
	}

	out := ReconcileSummary{Range: req.Range}
	phones := make(map[string]struct{})
	for _, e := range events {
		out.Total++
		if e.Phone != "" {
			phones[e.Phone] = struct{}{}
		}
		switch e.Type {
		case audit.EventCaseCreated:
			out.Created++
			switch cases.Direction(e.Direction) {
			case cases.DirectionInbound:
				out.InboundCreated++
			case cases.DirectionOutbound:
				out.OutboundCreated++
			}
		case audit.EventCaseFound:
			out.Found++
		case audit.EventCaseClosed:
			out.Closed++
		case audit.EventCaseNotFound:
			out.NotFound++
		case audit.EventCaseSkipped:
			out.Skipped++
		case audit.EventReconcileFailed:
			out.Failed++
			out.LastFailure = e.Message
		}
	}
	out.DistinctPhones = len(phones)
	if out.Total > 0 {
		out.FailureRate = float64(out.Failed) / float64(out.Total)
	}
	return out, nil
}
