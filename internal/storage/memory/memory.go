package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pankti/internal/core"
	"pankti/internal/ports"
)

// Store keeps every record in process memory. It is used by tests and for
// local runs with DATA_BACKEND=memory.
type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	customers  []core.Customer
	payments   []core.Payment
	employees  []core.Employee
	attendance []core.Attendance
	advances   []core.Advance
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source used for CreatedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) stamp(id *string, created *time.Time) {
	if strings.TrimSpace(*id) == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = s.now()
	}
}

func newestFirst[T any](items []T, created func(T) time.Time) []T {
	out := slices.Clone(items)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b T) int {
		return created(b).Compare(created(a))
	})
	return out
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(v T) bool { return key(v) == id })
}

// cloneAttendance copies a so that the stored Hours never aliases a caller's value.
func cloneAttendance(a core.Attendance) core.Attendance {
	if a.Hours != nil {
		h := *a.Hours
		a.Hours = &h
	}
	return a
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ports.ErrNotFound)
}

// Customers

func (s *Store) ListCustomers(_ context.Context) ([]core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.customers, func(c core.Customer) time.Time { return c.CreatedAt }), nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.customers, id, func(c core.Customer) string { return c.ID })
	if i < 0 {
		return core.Customer{}, notFound("customer", id)
	}
	return s.customers[i], nil
}

func (s *Store) CreateCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.ID, &c.CreatedAt)
	s.customers = append(s.customers, c)
	return c, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.customers, c.ID, func(c core.Customer) string { return c.ID })
	if i < 0 {
		return core.Customer{}, notFound("customer", c.ID)
	}
	c.CreatedAt = s.customers[i].CreatedAt
	s.customers[i] = c
	return c, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.customers, id, func(c core.Customer) string { return c.ID })
	if i < 0 {
		return notFound("customer", id)
	}
	s.customers = slices.Delete(s.customers, i, i+1)
	s.payments = slices.DeleteFunc(s.payments, func(p core.Payment) bool { return p.CustomerID == id })
	return nil
}

// Payments

func (s *Store) ListPayments(_ context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.payments, func(p core.Payment) time.Time { return p.CreatedAt }), nil
}

func (s *Store) ListPaymentsByCustomer(_ context.Context, customerID string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return newestFirst(out, func(p core.Payment) time.Time { return p.CreatedAt }), nil
}

func (s *Store) GetPayment(_ context.Context, id string) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, id, func(p core.Payment) string { return p.ID })
	if i < 0 {
		return core.Payment{}, notFound("payment", id)
	}
	return s.payments[i], nil
}

func (s *Store) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.customers, p.CustomerID, func(c core.Customer) string { return c.ID }) < 0 {
		return core.Payment{}, notFound("customer", p.CustomerID)
	}
	s.stamp(&p.ID, &p.CreatedAt)
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, p.ID, func(p core.Payment) string { return p.ID })
	if i < 0 {
		return core.Payment{}, notFound("payment", p.ID)
	}
	cur := s.payments[i]
	cur.Amount = p.Amount
	cur.PaymentMode = p.PaymentMode
	cur.Notes = p.Notes
	s.payments[i] = cur
	return cur, nil
}

func (s *Store) DeletePayment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.payments, id, func(p core.Payment) string { return p.ID })
	if i < 0 {
		return notFound("payment", id)
	}
	s.payments = slices.Delete(s.payments, i, i+1)
	return nil
}

// Employees

func (s *Store) ListEmployees(_ context.Context) ([]core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.employees)
	slices.SortStableFunc(out, func(a, b core.Employee) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.employees, id, func(e core.Employee) string { return e.ID })
	if i < 0 {
		return core.Employee{}, notFound("employee", id)
	}
	return s.employees[i], nil
}

func (s *Store) CreateEmployee(_ context.Context, e core.Employee) (core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&e.ID, &e.CreatedAt)
	s.employees = append(s.employees, e)
	return e, nil
}

// Attendance

func (s *Store) ListAttendance(_ context.Context, f ports.AttendanceFilter) ([]core.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Attendance
	for _, a := range s.attendance {
		if f.Matches(a) {
			out = append(out, cloneAttendance(a))
		}
	}
	slices.SortStableFunc(out, func(a, b core.Attendance) int { return a.Date.Compare(b.Date.Time) })
	return out, nil
}

func (s *Store) ListAttendanceByDate(_ context.Context, d core.Date) ([]core.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Attendance
	for _, a := range s.attendance {
		if a.Date.Key() == d.Key() {
			out = append(out, cloneAttendance(a))
		}
	}
	return out, nil
}

func (s *Store) GetAttendance(_ context.Context, id string) (core.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.attendance, id, func(a core.Attendance) string { return a.ID })
	if i < 0 {
		return core.Attendance{}, notFound("attendance", id)
	}
	return cloneAttendance(s.attendance[i]), nil
}

func (s *Store) CreateAttendance(_ context.Context, a core.Attendance) (core.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.employees, a.EmployeeID, func(e core.Employee) string { return e.ID }) < 0 {
		return core.Attendance{}, notFound("employee", a.EmployeeID)
	}
	s.stamp(&a.ID, &a.CreatedAt)
	s.attendance = append(s.attendance, cloneAttendance(a))
	return cloneAttendance(a), nil
}

func (s *Store) UpdateAttendance(_ context.Context, a core.Attendance) (core.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.attendance, a.ID, func(a core.Attendance) string { return a.ID })
	if i < 0 {
		return core.Attendance{}, notFound("attendance", a.ID)
	}
	cur := s.attendance[i]
	cur.Type = a.Type
	cur.Hours = cloneAttendance(a).Hours
	s.attendance[i] = cur
	return cloneAttendance(cur), nil
}

func (s *Store) DeleteAttendance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.attendance, id, func(a core.Attendance) string { return a.ID })
	if i < 0 {
		return notFound("attendance", id)
	}
	s.attendance = slices.Delete(s.attendance, i, i+1)
	return nil
}

// Advances

func (s *Store) ListAdvances(_ context.Context) ([]core.Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.advances, func(a core.Advance) time.Time { return a.Date.Time }), nil
}

func (s *Store) GetAdvance(_ context.Context, id string) (core.Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.advances, id, func(a core.Advance) string { return a.ID })
	if i < 0 {
		return core.Advance{}, notFound("advance", id)
	}
	return s.advances[i], nil
}

func (s *Store) CreateAdvance(_ context.Context, a core.Advance) (core.Advance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.employees, a.EmployeeID, func(e core.Employee) string { return e.ID }) < 0 {
		return core.Advance{}, notFound("employee", a.EmployeeID)
	}
	s.stamp(&a.ID, &a.CreatedAt)
	s.advances = append(s.advances, a)
	return a, nil
}
