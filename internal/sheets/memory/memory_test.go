package memory

import (
	"context"
	"testing"

	"pankti/internal/core"
	"pankti/internal/sheets"
)

func TestLedgerAppend(t *testing.T) {
	l := New()
	ctx := context.Background()

	ref, err := l.AppendPayment(ctx, sheets.PaymentRow{ID: "p1", Customer: "Ravi", Amount: core.Money{Cents: 5000}})
	if err != nil || ref != "mem:payments:1" {
		t.Fatalf("AppendPayment() = %q, %v", ref, err)
	}
	ref, err = l.AppendAdvance(ctx, sheets.AdvanceRow{ID: "a1", Employee: "Suresh"})
	if err != nil || ref != "mem:advances:1" {
		t.Fatalf("AppendAdvance() = %q, %v", ref, err)
	}
	if _, err := l.AppendPayment(ctx, sheets.PaymentRow{}); err == nil {
		t.Fatal("expected error for row without id")
	}

	if got := l.Payments(); len(got) != 1 || got[0].Customer != "Ravi" {
		t.Fatalf("Payments() = %+v", got)
	}
	if got := l.Advances(); len(got) != 1 || got[0].Employee != "Suresh" {
		t.Fatalf("Advances() = %+v", got)
	}
}
