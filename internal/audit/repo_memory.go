package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps events in process. Used when no audit database is configured, and in tests.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemoryRepo keeps at most limit events, dropping the oldest. limit <= 0 keeps everything.
func NewMemoryRepo(limit int) *MemoryRepo { return &MemoryRepo{limit: limit} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append([]Event(nil), r.events[len(r.events)-r.limit:]...)
	}
	return nil
}

func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ListEvents returns events created in [from, to), oldest first.
func (r *MemoryRepo) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
