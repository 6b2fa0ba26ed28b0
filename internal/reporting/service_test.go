package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"phonecase/internal/audit"
)

func seedRepo(t *testing.T, now time.Time) *audit.MemoryRepo {
	t.Helper()
	repo := audit.NewMemoryRepo(0)
	events := []audit.Event{
		{ID: "e1", Type: audit.EventCaseCreated, Phone: "+1555", Direction: "inbound", CreatedAt: now},
		{ID: "e2", Type: audit.EventCaseFound, Phone: "+1555", Direction: "inbound", CreatedAt: now.Add(time.Minute)},
		{ID: "e3", Type: audit.EventCaseCreated, Phone: "+1666", Direction: "outbound", CreatedAt: now.Add(2 * time.Minute)},
		{ID: "e4", Type: audit.EventReconcileFailed, Phone: "+1777", Message: "crm down", CreatedAt: now.Add(3 * time.Minute)},
		{ID: "e5", Type: audit.EventCaseClosed, Phone: "+1555", CreatedAt: now.Add(2 * time.Hour)},
	}
	for _, e := range events {
		if err := repo.Append(context.Background(), e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return repo
}

func TestReconcileSummary_Aggregates(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	svc := NewService(seedRepo(t, now))

	out, err := svc.ReconcileSummary(context.Background(), ReconcileSummaryRequest{Range: TimeRange{From: now, To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Total != 4 || out.Created != 2 || out.Found != 1 || out.Failed != 1 || out.Closed != 0 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.InboundCreated != 1 || out.OutboundCreated != 1 {
		t.Fatalf("unexpected direction split: %+v", out)
	}
	if out.DistinctPhones != 3 {
		t.Fatalf("expected 3 phones, got %d", out.DistinctPhones)
	}
	if out.FailureRate != 0.25 || out.LastFailure != "crm down" {
		t.Fatalf("unexpected failure stats: %+v", out)
	}
}

func TestReconcileSummary_RejectsBadRange(t *testing.T) {
	now := time.Now()
	svc := NewService(audit.NewMemoryRepo(0))
	_, err := svc.ReconcileSummary(context.Background(), ReconcileSummaryRequest{Range: TimeRange{From: now, To: now}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestReconcileSummary_CountsSkipped(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := audit.NewMemoryRepo(0)
	for i := 0; i < 2; i++ {
		if err := repo.Append(context.Background(), audit.Event{Type: audit.EventCaseSkipped, Phone: "anonymous", CreatedAt: now.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	out, err := NewService(repo).ReconcileSummary(context.Background(), ReconcileSummaryRequest{Range: TimeRange{From: now, To: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Total != 2 || out.Skipped != 2 || out.Created != 0 || out.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", out)
	}
}
