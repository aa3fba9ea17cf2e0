package services_test

import (
	"context"
	"testing"

	"goldengate/internal/domain"
	"goldengate/internal/repos"
	"goldengate/internal/services"
)

func newFinancing(t *testing.T) *services.FinancingService {
	t.Helper()
	svc := services.NewFinancingService(services.Backing{Slots: repos.NewMemorySlots(), Origin: "tab-a", Clock: fixedClock(1_730_000_000_000)})
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestFinancingService_CreateKeepsCallerStatus(t *testing.T) {
	svc := newFinancing(t)
	rec, err := svc.Create(context.Background(), services.FinancingFields{
		Customer: "Lucía Torres", Item: "Pulsera de Oro", TotalPrice: 2500000, Paid: 2500000,
		DueDate: "2024-12-01T00:00:00.000Z", Status: domain.StatusActive,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "fin-1730000000000" {
		t.Fatalf("unexpected id %q", rec.ID)
	}
	// fully paid but the caller said Active; the store does not second-guess it
	if rec.Status != domain.StatusActive {
		t.Fatalf("status was derived: %q", rec.Status)
	}
	if rec.DueDate != "2024-12-01" {
		t.Fatalf("due date not trimmed to a date: %q", rec.DueDate)
	}
	if got := svc.List(); len(got) != 6 || got[0].ID != rec.ID {
		t.Fatalf("new record must be prepended: %+v", got)
	}
}

func TestFinancingService_UpdateAndDelete(t *testing.T) {
	svc := newFinancing(t)
	ctx := context.Background()

	rec, ok, err := svc.Update(ctx, "fin-004", services.FinancingFields{
		Customer: "Valentina Martinez", Item: "Cadena de Oro", TotalPrice: 3375000, Paid: 3375000,
		DueDate: "2024-07-30", Status: domain.StatusPaid,
	})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if rec.Remaining() != 0 || rec.Status != domain.StatusPaid {
		t.Fatalf("unexpected record %+v", rec)
	}
	if svc.List()[3].ID != "fin-004" {
		t.Fatal("update must keep position")
	}

	if ok, _ := svc.Delete(ctx, "fin-004"); !ok {
		t.Fatal("delete fin-004 failed")
	}
	if ok, _ := svc.Delete(ctx, "fin-004"); ok {
		t.Fatal("second delete should be a no-op")
	}
	if len(svc.List()) != 4 {
		t.Fatalf("want 4 records, got %d", len(svc.List()))
	}
}

func TestDateOnly(t *testing.T) {
	for in, want := range map[string]string{
		"2024-08-15":               "2024-08-15",
		"2024-08-15T10:00:00Z":     "2024-08-15",
		" 2024-08-15T00:00:00.000": "2024-08-15",
	} {
		if got := services.DateOnly(in); got != want {
			t.Fatalf("DateOnly(%q) = %q, want %q", in, got, want)
		}
	}
}
