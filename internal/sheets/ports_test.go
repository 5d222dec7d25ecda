package sheets

import (
	"testing"
	"time"

	"pankti/internal/core"
)

func TestRowValues(t *testing.T) {
	p := PaymentRow{
		Date:     time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC),
		Customer: "Ravi",
		Amount:   core.Money{Cents: 125050},
		Mode:     "upi",
		Notes:    "second instalment",
		ID:       "p1",
	}
	got := p.Values()
	want := []any{"2025-03-09", "Ravi", 1250.5, "upi", "second instalment", "p1"}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, got[i], want[i])
		}
	}

	a := AdvanceRow{Date: core.NewDate(2025, 1, 2), Employee: "Suresh", Amount: core.Money{Cents: 50000}, Type: "Cash", ID: "a1"}
	if v := a.Values(); v[0] != "2025-01-02" || v[2] != 500.0 || v[5] != "a1" {
		t.Errorf("AdvanceRow.Values() = %v", v)
	}
}
