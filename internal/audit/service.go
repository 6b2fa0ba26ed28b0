package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records reconcile outcomes so swallowed CRM failures stay visible.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}
