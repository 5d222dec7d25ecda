package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pankti/internal/amqp"
	"pankti/internal/core"
	applog "pankti/internal/log"
	"pankti/internal/ports"
	"pankti/internal/sheets"
)

// LedgerSource is the read side the worker needs to rebuild a ledger row.
type LedgerSource interface {
	GetPayment(ctx context.Context, id string) (core.Payment, error)
	GetCustomer(ctx context.Context, id string) (core.Customer, error)
	GetAdvance(ctx context.Context, id string) (core.Advance, error)
	GetEmployee(ctx context.Context, id string) (core.Employee, error)
}

// LedgerWorker copies payments and advances to the bookkeeping sheet.
type LedgerWorker struct {
	store  LedgerSource
	ledger sheets.LedgerWriter
	log    *applog.StructuredLogger
}

func NewLedgerWorker(store LedgerSource, ledger sheets.LedgerWriter) *LedgerWorker {
	return &LedgerWorker{
		store:  store,
		ledger: ledger,
		log:    applog.NewStructuredLogger(applog.Default(applog.ComponentSheets)),
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP. A returned
// error requeues the message.
func (w *LedgerWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"kind", ev.Kind,
		"id", ev.ID,
		"op", ev.Op)

	// The sheet is an append-only journal; removals stay in the app.
	if ev.Op == amqp.OpDelete {
		slog.InfoContext(ctx, "Skipping delete event, ledger sheet is append-only", "kind", ev.Kind, "id", ev.ID)
		return nil
	}

	var err error
	switch ev.Kind {
	case amqp.KindPayment:
		err = w.exportPayment(ctx, ev.ID)
	case amqp.KindAdvance:
		err = w.exportAdvance(ctx, ev.ID)
	default:
		slog.WarnContext(ctx, "Unknown ledger event kind", "kind", ev.Kind, "id", ev.ID)
		return nil
	}

	if errors.Is(err, ports.ErrNotFound) {
		slog.WarnContext(ctx, "Record no longer exists, dropping ledger event", "kind", ev.Kind, "id", ev.ID)
		return nil
	}
	return err
}

func (w *LedgerWorker) exportPayment(ctx context.Context, id string) error {
	p, err := w.store.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("get payment from storage: %w", err)
	}

	customer := p.CustomerID
	if c, err := w.store.GetCustomer(ctx, p.CustomerID); err == nil {
		customer = c.Name
	} else if !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("get customer from storage: %w", err)
	}

	ref, err := w.ledger.AppendPayment(ctx, sheets.PaymentRow{
		Date:     p.CreatedAt,
		Customer: customer,
		Amount:   p.Amount,
		Mode:     p.PaymentMode,
		Notes:    p.Notes,
		ID:       p.ID,
	})
	if err != nil {
		return fmt.Errorf("append payment to ledger: %w", err)
	}

	w.log.LogLedgerWrite(ctx, applog.OpAppend, "payment", p.ID, p.Amount.Cents)
	slog.DebugContext(ctx, "Ledger sheet row appended", "id", p.ID, "sheets_ref", ref)
	return nil
}

func (w *LedgerWorker) exportAdvance(ctx context.Context, id string) error {
	a, err := w.store.GetAdvance(ctx, id)
	if err != nil {
		return fmt.Errorf("get advance from storage: %w", err)
	}

	employee := a.EmployeeID
	if e, err := w.store.GetEmployee(ctx, a.EmployeeID); err == nil {
		employee = e.Name
	} else if !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("get employee from storage: %w", err)
	}

	ref, err := w.ledger.AppendAdvance(ctx, sheets.AdvanceRow{
		Date:     a.Date,
		Employee: employee,
		Amount:   a.Amount,
		Type:     a.TransactionType,
		Notes:    a.Notes,
		ID:       a.ID,
	})
	if err != nil {
		return fmt.Errorf("append advance to ledger: %w", err)
	}

	w.log.LogLedgerWrite(ctx, applog.OpAppend, "advance", a.ID, a.Amount.Cents)
	slog.DebugContext(ctx, "Ledger sheet row appended", "id", a.ID, "sheets_ref", ref)
	return nil
}
