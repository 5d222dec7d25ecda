package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries wraps the hand-written statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// timestamps are stored in a fixed-width UTC layout so ORDER BY on the text
// column follows time order.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type Customer struct {
	ID            string
	Name          string
	Address       string
	Phone         string
	Location      string
	WorkAmount    int64
	AdvanceAmount int64
	WorkCompleted bool
	ReferredBy    string
	CreatedAt     string
}

const customerColumns = `id, name, address, phone, location, work_amount, advance_amount, work_completed, referred_by, created_at`

func scanCustomer(sc interface{ Scan(...any) error }) (Customer, error) {
	var c Customer
	err := sc.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Location, &c.WorkAmount, &c.AdvanceAmount, &c.WorkCompleted, &c.ReferredBy, &c.CreatedAt)
	return c, err
}

func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (q *Queries) GetCustomer(ctx context.Context, id string) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
}

func (q *Queries) InsertCustomer(ctx context.Context, c Customer) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Address, c.Phone, c.Location, c.WorkAmount, c.AdvanceAmount, c.WorkCompleted, c.ReferredBy, c.CreatedAt)
	return err
}

func (q *Queries) UpdateCustomer(ctx context.Context, c Customer) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE customers
SET name = ?, address = ?, phone = ?, location = ?, work_amount = ?, advance_amount = ?, work_completed = ?, referred_by = ?
WHERE id = ?`,
		c.Name, c.Address, c.Phone, c.Location, c.WorkAmount, c.AdvanceAmount, c.WorkCompleted, c.ReferredBy, c.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteCustomer(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type Payment struct {
	ID          string
	CustomerID  string
	Amount      int64
	PaymentMode string
	Notes       string
	CreatedAt   string
}

const paymentColumns = `id, customer_id, amount, payment_mode, notes, created_at`

func scanPayment(sc interface{ Scan(...any) error }) (Payment, error) {
	var p Payment
	err := sc.Scan(&p.ID, &p.CustomerID, &p.Amount, &p.PaymentMode, &p.Notes, &p.CreatedAt)
	return p, err
}

func (q *Queries) listPayments(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (q *Queries) ListPayments(ctx context.Context) ([]Payment, error) {
	return q.listPayments(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at DESC`)
}

func (q *Queries) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	return q.listPayments(ctx, `SELECT `+paymentColumns+` FROM payments WHERE customer_id = ? ORDER BY created_at DESC`, customerID)
}

func (q *Queries) GetPayment(ctx context.Context, id string) (Payment, error) {
	return scanPayment(q.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
}

func (q *Queries) InsertPayment(ctx context.Context, p Payment) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, p.Amount, p.PaymentMode, p.Notes, p.CreatedAt)
	return err
}

func (q *Queries) UpdatePayment(ctx context.Context, p Payment) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE payments SET amount = ?, payment_mode = ?, notes = ? WHERE id = ?`,
		p.Amount, p.PaymentMode, p.Notes, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeletePayment(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeletePaymentsByCustomer(ctx context.Context, customerID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM payments WHERE customer_id = ?`, customerID)
	return err
}

type Employee struct {
	ID           string
	Name         string
	Phone        string
	Address      string
	DailyWage    int64
	OvertimeRate float64
	CreatedAt    string
}

const employeeColumns = `id, name, phone, address, daily_wage, overtime_rate, created_at`

func scanEmployee(sc interface{ Scan(...any) error }) (Employee, error) {
	var e Employee
	err := sc.Scan(&e.ID, &e.Name, &e.Phone, &e.Address, &e.DailyWage, &e.OvertimeRate, &e.CreatedAt)
	return e, err
}

func (q *Queries) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (q *Queries) GetEmployee(ctx context.Context, id string) (Employee, error) {
	return scanEmployee(q.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id))
}

func (q *Queries) InsertEmployee(ctx context.Context, e Employee) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO employees (`+employeeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Phone, e.Address, e.DailyWage, e.OvertimeRate, e.CreatedAt)
	return err
}

type Attendance struct {
	ID         string
	EmployeeID string
	Date       string
	Type       string
	Hours      sql.NullFloat64
	CreatedAt  string
}

const attendanceColumns = `id, employee_id, date, type, hours, created_at`

func scanAttendance(sc interface{ Scan(...any) error }) (Attendance, error) {
	var a Attendance
	err := sc.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Type, &a.Hours, &a.CreatedAt)
	return a, err
}

// ListAttendanceParams selects records by optional employee and an optional
// inclusive date range; empty strings disable a constraint.
type ListAttendanceParams struct {
	EmployeeID string
	From       string
	To         string
}

func (q *Queries) ListAttendance(ctx context.Context, arg ListAttendanceParams) ([]Attendance, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+attendanceColumns+` FROM attendance
WHERE (?1 = '' OR employee_id = ?1)
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
ORDER BY date, created_at`, arg.EmployeeID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (q *Queries) GetAttendance(ctx context.Context, id string) (Attendance, error) {
	return scanAttendance(q.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id))
}

func (q *Queries) InsertAttendance(ctx context.Context, a Attendance) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO attendance (`+attendanceColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.Date, a.Type, a.Hours, a.CreatedAt)
	return err
}

func (q *Queries) UpdateAttendance(ctx context.Context, a Attendance) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE attendance SET type = ?, hours = ? WHERE id = ?`, a.Type, a.Hours, a.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteAttendance(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type Advance struct {
	ID              string
	EmployeeID      string
	Date            string
	Amount          int64
	TransactionType string
	Notes           string
	CreatedAt       string
}

const advanceColumns = `id, employee_id, date, amount, transaction_type, notes, created_at`

func scanAdvance(sc interface{ Scan(...any) error }) (Advance, error) {
	var a Advance
	err := sc.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.Amount, &a.TransactionType, &a.Notes, &a.CreatedAt)
	return a, err
}

func (q *Queries) ListAdvances(ctx context.Context) ([]Advance, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+advanceColumns+` FROM advances ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (q *Queries) GetAdvance(ctx context.Context, id string) (Advance, error) {
	return scanAdvance(q.db.QueryRowContext(ctx, `SELECT `+advanceColumns+` FROM advances WHERE id = ?`, id))
}

func (q *Queries) InsertAdvance(ctx context.Context, a Advance) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO advances (`+advanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.Date, a.Amount, a.TransactionType, a.Notes, a.CreatedAt)
	return err
}
