package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pankti/internal/core"
	"pankti/internal/ports"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp(id *string, created *time.Time) {
	if strings.TrimSpace(*id) == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = r.now()
	}
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ports.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", kind, err)
}

func affected(kind, id string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ports.ErrNotFound)
	}
	return nil
}

func parseDay(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

// Customers

func toCoreCustomer(c Customer) core.Customer {
	return core.Customer{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Location:      c.Location,
		WorkAmount:    core.Money{Cents: c.WorkAmount},
		AdvanceAmount: core.Money{Cents: c.AdvanceAmount},
		WorkCompleted: c.WorkCompleted,
		ReferredBy:    c.ReferredBy,
		CreatedAt:     parseTime(c.CreatedAt),
	}
}

func fromCoreCustomer(c core.Customer) Customer {
	return Customer{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Location:      c.Location,
		WorkAmount:    c.WorkAmount.Cents,
		AdvanceAmount: c.AdvanceAmount.Cents,
		WorkCompleted: c.WorkCompleted,
		ReferredBy:    c.ReferredBy,
		CreatedAt:     formatTime(c.CreatedAt),
	}
}

func (r *SQLiteRepository) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.queries.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	out := make([]core.Customer, len(rows))
	for i, c := range rows {
		out[i] = toCoreCustomer(c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCustomer(ctx context.Context, id string) (core.Customer, error) {
	c, err := r.queries.GetCustomer(ctx, id)
	if err != nil {
		return core.Customer{}, notFound("customer", id, err)
	}
	return toCoreCustomer(c), nil
}

func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	r.stamp(&c.ID, &c.CreatedAt)
	if err := r.queries.InsertCustomer(ctx, fromCoreCustomer(c)); err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	slog.InfoContext(ctx, "Customer saved to SQLite", "id", c.ID, "work_amount_cents", c.WorkAmount.Cents)
	return r.GetCustomer(ctx, c.ID)
}

func (r *SQLiteRepository) UpdateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	n, err := r.queries.UpdateCustomer(ctx, fromCoreCustomer(c))
	if err := affected("customer", c.ID, n, err); err != nil {
		return core.Customer{}, err
	}
	return r.GetCustomer(ctx, c.ID)
}

// DeleteCustomer removes the customer's payments and the customer in one transaction.
func (r *SQLiteRepository) DeleteCustomer(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete customer: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeletePaymentsByCustomer(ctx, id); err != nil {
		return fmt.Errorf("delete customer payments: %w", err)
	}
	n, err := q.DeleteCustomer(ctx, id)
	if err := affected("customer", id, n, err); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete customer: %w", err)
	}
	slog.InfoContext(ctx, "Customer deleted with payments", "id", id)
	return nil
}

// Payments

func toCorePayment(p Payment) core.Payment {
	return core.Payment{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Amount:      core.Money{Cents: p.Amount},
		PaymentMode: p.PaymentMode,
		Notes:       p.Notes,
		CreatedAt:   parseTime(p.CreatedAt),
	}
}

func toCorePayments(rows []Payment) []core.Payment {
	out := make([]core.Payment, len(rows))
	for i, p := range rows {
		out[i] = toCorePayment(p)
	}
	return out
}

func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.queries.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return toCorePayments(rows), nil
}

func (r *SQLiteRepository) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]core.Payment, error) {
	rows, err := r.queries.ListPaymentsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments for customer %s: %w", customerID, err)
	}
	return toCorePayments(rows), nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id string) (core.Payment, error) {
	p, err := r.queries.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, notFound("payment", id, err)
	}
	return toCorePayment(p), nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if _, err := r.queries.GetCustomer(ctx, p.CustomerID); err != nil {
		return core.Payment{}, notFound("customer", p.CustomerID, err)
	}
	r.stamp(&p.ID, &p.CreatedAt)
	err := r.queries.InsertPayment(ctx, Payment{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Amount:      p.Amount.Cents,
		PaymentMode: p.PaymentMode,
		Notes:       p.Notes,
		CreatedAt:   formatTime(p.CreatedAt),
	})
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	slog.InfoContext(ctx, "Payment saved to SQLite", "id", p.ID, "customer_id", p.CustomerID, "amount_cents", p.Amount.Cents)
	return r.GetPayment(ctx, p.ID)
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	n, err := r.queries.UpdatePayment(ctx, Payment{ID: p.ID, Amount: p.Amount.Cents, PaymentMode: p.PaymentMode, Notes: p.Notes})
	if err := affected("payment", p.ID, n, err); err != nil {
		return core.Payment{}, err
	}
	return r.GetPayment(ctx, p.ID)
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id string) error {
	n, err := r.queries.DeletePayment(ctx, id)
	return affected("payment", id, n, err)
}

// Employees

func toCoreEmployee(e Employee) core.Employee {
	return core.Employee{
		ID:           e.ID,
		Name:         e.Name,
		Phone:        e.Phone,
		Address:      e.Address,
		DailyWage:    core.Money{Cents: e.DailyWage},
		OvertimeRate: e.OvertimeRate,
		CreatedAt:    parseTime(e.CreatedAt),
	}
}

func (r *SQLiteRepository) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := r.queries.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]core.Employee, len(rows))
	for i, e := range rows {
		out[i] = toCoreEmployee(e)
	}
	return out, nil
}

func (r *SQLiteRepository) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	e, err := r.queries.GetEmployee(ctx, id)
	if err != nil {
		return core.Employee{}, notFound("employee", id, err)
	}
	return toCoreEmployee(e), nil
}

func (r *SQLiteRepository) CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	r.stamp(&e.ID, &e.CreatedAt)
	err := r.queries.InsertEmployee(ctx, Employee{
		ID:           e.ID,
		Name:         e.Name,
		Phone:        e.Phone,
		Address:      e.Address,
		DailyWage:    e.DailyWage.Cents,
		OvertimeRate: e.OvertimeRate,
		CreatedAt:    formatTime(e.CreatedAt),
	})
	if err != nil {
		return core.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return r.GetEmployee(ctx, e.ID)
}

// Attendance

func toCoreAttendance(a Attendance) core.Attendance {
	out := core.Attendance{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       parseDay(a.Date),
		Type:       core.AttendanceType(a.Type),
		CreatedAt:  parseTime(a.CreatedAt),
	}
	if a.Hours.Valid {
		h := a.Hours.Float64
		out.Hours = &h
	}
	return out
}

func nullHours(h *float64) sql.NullFloat64 {
	if h == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *h, Valid: true}
}

func (r *SQLiteRepository) listAttendance(ctx context.Context, arg ListAttendanceParams) ([]core.Attendance, error) {
	rows, err := r.queries.ListAttendance(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]core.Attendance, len(rows))
	for i, a := range rows {
		out[i] = toCoreAttendance(a)
	}
	return out, nil
}

func (r *SQLiteRepository) ListAttendance(ctx context.Context, f ports.AttendanceFilter) ([]core.Attendance, error) {
	arg := ListAttendanceParams{EmployeeID: f.EmployeeID}
	if from, to, ok := f.Window(); ok {
		arg.From, arg.To = from.Key(), to.Key()
	}
	return r.listAttendance(ctx, arg)
}

func (r *SQLiteRepository) ListAttendanceByDate(ctx context.Context, d core.Date) ([]core.Attendance, error) {
	return r.listAttendance(ctx, ListAttendanceParams{From: d.Key(), To: d.Key()})
}

func (r *SQLiteRepository) GetAttendance(ctx context.Context, id string) (core.Attendance, error) {
	a, err := r.queries.GetAttendance(ctx, id)
	if err != nil {
		return core.Attendance{}, notFound("attendance", id, err)
	}
	return toCoreAttendance(a), nil
}

func (r *SQLiteRepository) CreateAttendance(ctx context.Context, a core.Attendance) (core.Attendance, error) {
	if _, err := r.queries.GetEmployee(ctx, a.EmployeeID); err != nil {
		return core.Attendance{}, notFound("employee", a.EmployeeID, err)
	}
	r.stamp(&a.ID, &a.CreatedAt)
	err := r.queries.InsertAttendance(ctx, Attendance{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Key(),
		Type:       string(a.Type),
		Hours:      nullHours(a.Hours),
		CreatedAt:  formatTime(a.CreatedAt),
	})
	if err != nil {
		return core.Attendance{}, fmt.Errorf("create attendance: %w", err)
	}
	return r.GetAttendance(ctx, a.ID)
}

func (r *SQLiteRepository) UpdateAttendance(ctx context.Context, a core.Attendance) (core.Attendance, error) {
	n, err := r.queries.UpdateAttendance(ctx, Attendance{ID: a.ID, Type: string(a.Type), Hours: nullHours(a.Hours)})
	if err := affected("attendance", a.ID, n, err); err != nil {
		return core.Attendance{}, err
	}
	return r.GetAttendance(ctx, a.ID)
}

func (r *SQLiteRepository) DeleteAttendance(ctx context.Context, id string) error {
	n, err := r.queries.DeleteAttendance(ctx, id)
	return affected("attendance", id, n, err)
}

// Advances

func toCoreAdvance(a Advance) core.Advance {
	return core.Advance{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		Date:            parseDay(a.Date),
		Amount:          core.Money{Cents: a.Amount},
		TransactionType: a.TransactionType,
		Notes:           a.Notes,
		CreatedAt:       parseTime(a.CreatedAt),
	}
}

func (r *SQLiteRepository) ListAdvances(ctx context.Context) ([]core.Advance, error) {
	rows, err := r.queries.ListAdvances(ctx)
	if err != nil {
		return nil, fmt.Errorf("list advances: %w", err)
	}
	out := make([]core.Advance, len(rows))
	for i, a := range rows {
		out[i] = toCoreAdvance(a)
	}
	return out, nil
}

func (r *SQLiteRepository) GetAdvance(ctx context.Context, id string) (core.Advance, error) {
	a, err := r.queries.GetAdvance(ctx, id)
	if err != nil {
		return core.Advance{}, notFound("advance", id, err)
	}
	return toCoreAdvance(a), nil
}

func (r *SQLiteRepository) CreateAdvance(ctx context.Context, a core.Advance) (core.Advance, error) {
	if _, err := r.queries.GetEmployee(ctx, a.EmployeeID); err != nil {
		return core.Advance{}, notFound("employee", a.EmployeeID, err)
	}
	r.stamp(&a.ID, &a.CreatedAt)
	err := r.queries.InsertAdvance(ctx, Advance{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		Date:            a.Date.Key(),
		Amount:          a.Amount.Cents,
		TransactionType: a.TransactionType,
		Notes:           a.Notes,
		CreatedAt:       formatTime(a.CreatedAt),
	})
	if err != nil {
		return core.Advance{}, fmt.Errorf("create advance: %w", err)
	}
	slog.InfoContext(ctx, "Advance saved to SQLite", "id", a.ID, "employee_id", a.EmployeeID, "amount_cents", a.Amount.Cents)
	return r.GetAdvance(ctx, a.ID)
}
