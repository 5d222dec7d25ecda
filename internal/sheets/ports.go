package sheets

import (
	"context"
	"time"

	"pankti/internal/core"
)

// PaymentRow is one line of the payments ledger sheet.
type PaymentRow struct {
	Date     time.Time
	Customer string
	Amount   core.Money
	Mode     string
	Notes    string
	ID       string
}

// AdvanceRow is one line of the advances ledger sheet.
type AdvanceRow struct {
	Date     core.Date
	Employee string
	Amount   core.Money
	Type     string
	Notes    string
	ID       string
}

// Values returns the cells in sheet column order.
func (r PaymentRow) Values() []any {
	return []any{r.Date.Format(time.DateOnly), r.Customer, r.Amount.Rupees(), r.Mode, r.Notes, r.ID}
}

func (r AdvanceRow) Values() []any {
	return []any{r.Date.Key(), r.Employee, r.Amount.Rupees(), r.Type, r.Notes, r.ID}
}

// LedgerWriter appends bookkeeping rows to an external ledger and returns a
// reference to the written range.
type LedgerWriter interface {
	AppendPayment(ctx context.Context, row PaymentRow) (rowRef string, err error)
	AppendAdvance(ctx context.Context, row AdvanceRow) (rowRef string, err error)
}
