package cases

import (
	"context"
	"fmt"
	"sync"

	"phonecase/internal/crm"
)

// MemoryStore is an in-memory Store with exact phone matching, useful for tests.
// Set Err to make every call fail. Mode only decides which phones are
// unkeyable, mirroring crm.Client.
type MemoryStore struct {
	mu     sync.Mutex
	cases  []crm.Case
	writes int

	Err  error
	Mode crm.MatchMode
}

func NewMemoryStore(seed ...crm.Case) *MemoryStore {
	return &MemoryStore{cases: append([]crm.Case(nil), seed...)}
}

func (s *MemoryStore) FindCaseByPhone(ctx context.Context, phone string) (*crm.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if !(crm.Matcher{Mode: s.Mode, Fields: []string{"Phone"}}).Keyable(phone) {
		return nil, crm.ErrUnkeyablePhone
	}
	for i := range s.cases {
		if s.cases[i].Phone == phone {
			c := s.cases[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateCase(ctx context.Context, in crm.NewCase) (crm.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return crm.Case{}, s.Err
	}
	c := crm.Case{
		ID:          fmt.Sprintf("500%06d", len(s.cases)+1),
		Subject:     in.Subject,
		Status:      in.Status,
		Origin:      in.Origin,
		Phone:       in.Phone,
		Description: in.Description,
	}
	s.cases = append(s.cases, c)
	s.writes++
	return c, nil
}

func (s *MemoryStore) UpdateCaseStatus(ctx context.Context, id string, status crm.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.cases {
		if s.cases[i].ID == id {
			s.cases[i].Status = status
			s.writes++
			return nil
		}
	}
	return fmt.Errorf("case %s not found", id)
}

// Cases returns a copy of every stored Case.
func (s *MemoryStore) Cases() []crm.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]crm.Case(nil), s.cases...)
}

// Writes counts creates and updates.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
