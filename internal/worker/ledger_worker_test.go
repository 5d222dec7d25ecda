package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"pankti/internal/amqp"
	"pankti/internal/core"
	"pankti/internal/sheets"
	sheetsmem "pankti/internal/sheets/memory"
	"pankti/internal/storage/memory"
)

type failingLedger struct{}

func (failingLedger) AppendPayment(context.Context, sheets.PaymentRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func (failingLedger) AppendAdvance(context.Context, sheets.AdvanceRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func seed(t *testing.T) (*memory.Store, core.Payment, core.Advance) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	store := memory.New().WithClock(func() time.Time { return now })

	c, err := store.CreateCustomer(ctx, core.Customer{Name: "Ravi", Phone: "98250", Location: "Surat", WorkAmount: core.Money{Cents: 100000}})
	if err != nil {
		t.Fatal(err)
	}
	p, err := store.CreatePayment(ctx, core.Payment{CustomerID: c.ID, Amount: core.Money{Cents: 25000}, PaymentMode: "upi"})
	if err != nil {
		t.Fatal(err)
	}
	e, err := store.CreateEmployee(ctx, core.Employee{Name: "Suresh", Phone: "90000", DailyWage: core.Money{Cents: 60000}, OvertimeRate: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	a, err := store.CreateAdvance(ctx, core.Advance{EmployeeID: e.ID, Date: core.NewDate(2025, 4, 1), Amount: core.Money{Cents: 50000}, TransactionType: "Cash"})
	if err != nil {
		t.Fatal(err)
	}
	return store, p, a
}

func TestHandleLedgerEvent_ExportsRows(t *testing.T) {
	store, p, a := seed(t)
	ledger := sheetsmem.New()
	w := NewLedgerWorker(store, ledger)
	ctx := context.Background()

	if err := w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.KindPayment, p.ID, amqp.OpUpsert)); err != nil {
		t.Fatalf("payment event: %v", err)
	}
	if err := w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.KindAdvance, a.ID, amqp.OpUpsert)); err != nil {
		t.Fatalf("advance event: %v", err)
	}

	payments := ledger.Payments()
	if len(payments) != 1 {
		t.Fatalf("expected one payment row, got %d", len(payments))
	}
	if got := payments[0]; got.Customer != "Ravi" || got.Amount.Cents != 25000 || got.Mode != "upi" || got.ID != p.ID {
		t.Errorf("unexpected payment row %+v", got)
	}
	advances := ledger.Advances()
	if len(advances) != 1 {
		t.Fatalf("expected one advance row, got %d", len(advances))
	}
	if got := advances[0]; got.Employee != "Suresh" || got.Type != "Cash" || got.Date != core.NewDate(2025, 4, 1) {
		t.Errorf("unexpected advance row %+v", got)
	}
}

func TestHandleLedgerEvent_AcksWithoutExport(t *testing.T) {
	store, p, _ := seed(t)
	ledger := sheetsmem.New()
	w := NewLedgerWorker(store, ledger)
	ctx := context.Background()

	tests := []struct {
		name string
		ev   *amqp.LedgerEvent
	}{
		{"delete event", amqp.NewLedgerEvent(amqp.KindPayment, p.ID, amqp.OpDelete)},
		{"missing payment", amqp.NewLedgerEvent(amqp.KindPayment, "gone", amqp.OpUpsert)},
		{"missing advance", amqp.NewLedgerEvent(amqp.KindAdvance, "gone", amqp.OpUpsert)},
		{"unknown kind", &amqp.LedgerEvent{Kind: "expense", ID: "x", Op: amqp.OpUpsert}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.HandleLedgerEvent(ctx, tt.ev); err != nil {
				t.Fatalf("expected ack, got %v", err)
			}
		})
	}
	if n := len(ledger.Payments()) + len(ledger.Advances()); n != 0 {
		t.Fatalf("expected no rows written, got %d", n)
	}
}

func TestHandleLedgerEvent_LedgerFailureRequeues(t *testing.T) {
	store, p, _ := seed(t)
	w := NewLedgerWorker(store, failingLedger{})

	err := w.HandleLedgerEvent(context.Background(), amqp.NewLedgerEvent(amqp.KindPayment, p.ID, amqp.OpUpsert))
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}
