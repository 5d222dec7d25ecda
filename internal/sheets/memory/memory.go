package memory

import (
	"context"
	"fmt"
	"sync"

	"pankti/internal/sheets"
)

// Ledger keeps appended rows in memory. It backs the ledger worker in tests
// and in dry-run mode.
type Ledger struct {
	mu       sync.Mutex
	payments []sheets.PaymentRow
	advances []sheets.AdvanceRow
}

var _ sheets.LedgerWriter = (*Ledger)(nil)

func New() *Ledger { return &Ledger{} }

func (l *Ledger) AppendPayment(_ context.Context, row sheets.PaymentRow) (string, error) {
	if row.ID == "" {
		return "", fmt.Errorf("payment row without id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.payments = append(l.payments, row)
	return fmt.Sprintf("mem:payments:%d", len(l.payments)), nil
}

func (l *Ledger) AppendAdvance(_ context.Context, row sheets.AdvanceRow) (string, error) {
	if row.ID == "" {
		return "", fmt.Errorf("advance row without id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advances = append(l.advances, row)
	return fmt.Sprintf("mem:advances:%d", len(l.advances)), nil
}

// Payments returns a copy of the payment rows written so far.
func (l *Ledger) Payments() []sheets.PaymentRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.PaymentRow(nil), l.payments...)
}

func (l *Ledger) Advances() []sheets.AdvanceRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.AdvanceRow(nil), l.advances...)
}
