package ports

import (
	"context"
	"errors"

	"pankti/internal/core"
)

// ErrNotFound is returned by every store when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// AttendanceFilter narrows an attendance listing. Zero values mean "no constraint";
// Month is only honoured together with Year.
type AttendanceFilter struct {
	EmployeeID string
	Year       int
	Month      int
}

// Ports for the data-access collaborator. Create methods assign the ID and
// CreatedAt when they are empty and return the stored record.
type (
	CustomerStore interface {
		// ListCustomers returns every customer, newest first.
		ListCustomers(ctx context.Context) ([]core.Customer, error)
		GetCustomer(ctx context.Context, id string) (core.Customer, error)
		CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
		UpdateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
		// DeleteCustomer removes the customer together with its payments.
		DeleteCustomer(ctx context.Context, id string) error
	}

	PaymentStore interface {
		ListPayments(ctx context.Context) ([]core.Payment, error)
		// ListPaymentsByCustomer returns the customer's payments, newest first.
		ListPaymentsByCustomer(ctx context.Context, customerID string) ([]core.Payment, error)
		GetPayment(ctx context.Context, id string) (core.Payment, error)
		CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
		// UpdatePayment changes amount, mode and notes only.
		UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
		DeletePayment(ctx context.Context, id string) error
	}

	EmployeeStore interface {
		// ListEmployees returns the roster ordered by name.
		ListEmployees(ctx context.Context) ([]core.Employee, error)
		GetEmployee(ctx context.Context, id string) (core.Employee, error)
		CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error)
	}

	AttendanceStore interface {
		ListAttendance(ctx context.Context, f AttendanceFilter) ([]core.Attendance, error)
		ListAttendanceByDate(ctx context.Context, d core.Date) ([]core.Attendance, error)
		GetAttendance(ctx context.Context, id string) (core.Attendance, error)
		CreateAttendance(ctx context.Context, a core.Attendance) (core.Attendance, error)
		// UpdateAttendance changes type and hours of an existing record.
		UpdateAttendance(ctx context.Context, a core.Attendance) (core.Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
	}

	AdvanceStore interface {
		// ListAdvances returns every advance, most recent date first.
		ListAdvances(ctx context.Context) ([]core.Advance, error)
		GetAdvance(ctx context.Context, id string) (core.Advance, error)
		CreateAdvance(ctx context.Context, a core.Advance) (core.Advance, error)
	}

	// Store groups every port; both storage implementations satisfy it.
	Store interface {
		CustomerStore
		PaymentStore
		EmployeeStore
		AttendanceStore
		AdvanceStore
	}
)

// Matches reports whether the record falls inside the filter window.
func (f AttendanceFilter) Matches(a core.Attendance) bool {
	if f.EmployeeID != "" && a.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Year != 0 && a.Date.Year() != f.Year {
		return false
	}
	if f.Year != 0 && f.Month != 0 && int(a.Date.Time.Month()) != f.Month {
		return false
	}
	return true
}

// Window returns the inclusive first and last day selected by the filter, or
// ok=false when the filter has no date constraint.
func (f AttendanceFilter) Window() (from, to core.Date, ok bool) {
	if f.Year == 0 {
		return core.Date{}, core.Date{}, false
	}
	if f.Month == 0 {
		return core.NewDate(f.Year, 1, 1), core.NewDate(f.Year, 12, 31), true
	}
	return core.NewDate(f.Year, f.Month, 1), core.NewDate(f.Year, f.Month, core.DaysInMonth(f.Year, f.Month)), true
}
