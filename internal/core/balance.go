package core

import (
	"slices"
	"strings"
)

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

const (
	SortNone SortOrder = "none"
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

type (
	StatusFilter string
	SortOrder    string

	// PaymentIndex groups payments by customer id.
	PaymentIndex map[string][]Payment

	// CustomerQuery carries the list controls of the customer view.
	CustomerQuery struct {
		Search string
		Status StatusFilter
		Sort   SortOrder
	}
)

// IndexPayments groups payments by customer id, keeping input order within a group.
func IndexPayments(payments []Payment) PaymentIndex {
	idx := make(PaymentIndex)
	for _, p := range payments {
		idx[p.CustomerID] = append(idx[p.CustomerID], p)
	}
	return idx
}

// For returns the payments recorded against customerID.
func (idx PaymentIndex) For(customerID string) []Payment {
	return idx[customerID]
}

// SumPayments totals payment amounts.
func SumPayments(payments []Payment) Money {
	var total Money
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// CustomerBalance returns work - advance - sum(payments). The result is signed;
// a negative balance means the customer overpaid.
func CustomerBalance(c Customer, payments []Payment) Money {
	paid := SumPayments(payments)
	return c.WorkAmount.Sub(c.AdvanceAmount).Sub(paid)
}

// PendingAmount is CustomerBalance floored at zero.
func PendingAmount(c Customer, payments []Payment) Money {
	return CustomerBalance(c, payments).ClampZero()
}

// ComputePortfolioTotals aggregates work value and pending amounts over all customers.
func ComputePortfolioTotals(customers []Customer, idx PaymentIndex) PortfolioTotals {
	totals := PortfolioTotals{CustomerCount: len(customers)}
	for _, c := range customers {
		totals.TotalWorkValue = totals.TotalWorkValue.Add(c.WorkAmount)
		pending := PendingAmount(c, idx.For(c.ID))
		totals.TotalPending = totals.TotalPending.Add(pending)
		if c.WorkCompleted {
			totals.CompletedWorkPending = totals.CompletedWorkPending.Add(pending)
		}
	}
	return totals
}

// MatchesCustomer reports whether name, phone or location contains term,
// ignoring case. Only an empty term matches everything; whitespace in term is
// matched literally.
func MatchesCustomer(c Customer, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Phone), term) ||
		strings.Contains(strings.ToLower(c.Location), term)
}

// SearchCustomers keeps customers matching term, in input order.
func SearchCustomers(customers []Customer, term string) []Customer {
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if MatchesCustomer(c, term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterAndSortCustomers applies search, status filter and pending-amount ordering.
//
// Status is decided on the clamped pending amount, so overpaid customers count
// as completed. Sorting is stable: ties keep their input order.
func FilterAndSortCustomers(customers []Customer, idx PaymentIndex, q CustomerQuery) []CustomerPending {
	out := make([]CustomerPending, 0, len(customers))
	for _, c := range customers {
		if !MatchesCustomer(c, q.Search) {
			continue
		}
		payments := idx.For(c.ID)
		balance := CustomerBalance(c, payments)
		row := CustomerPending{Customer: c, Balance: balance, Pending: balance.ClampZero()}

		switch q.Status {
		case FilterPending:
			if row.Pending.Cents <= 0 {
				continue
			}
		case FilterCompleted:
			if row.Pending.Cents != 0 {
				continue
			}
		}
		out = append(out, row)
	}

	switch q.Sort {
	case SortDesc:
		slices.SortStableFunc(out, func(a, b CustomerPending) int {
			return compareCents(b.Pending.Cents, a.Pending.Cents)
		})
	case SortAsc:
		slices.SortStableFunc(out, func(a, b CustomerPending) int {
			return compareCents(a.Pending.Cents, b.Pending.Cents)
		})
	}
	return out
}

// ParseStatusFilter maps a query value to a filter, defaulting to FilterAll.
func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterPending:
		return FilterPending
	case FilterCompleted:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// ParseSortOrder maps a query value to a sort order, defaulting to SortNone.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortDesc:
		return SortDesc
	case SortAsc:
		return SortAsc
	default:
		return SortNone
	}
}

func compareCents(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
